package lightmap

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-editor/internal/engine/lighting"
	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/formats"
	"github.com/Faultbox/midgard-editor/pkg/pack"
)

// Baker errors reported in Result.Error.
var (
	ErrBakeInProgress = errors.New("a bake is already running")
	ErrNothingToBake  = errors.New("no bakeable faces")
)

// Progress milestones.
const (
	samplingShare = 0.9
	blurDone      = 0.95
)

// Lightmap is the baked atlas.
type Lightmap = formats.Lightmap

// Region is the atlas rectangle of one face.
type Region = formats.LightmapRegion

// Job is the input of one bake. Lightmap UVs are written into the faces of
// Solids.
type Job struct {
	Solids []*brush.Solid
	Lights []lighting.Light
}

// Result is the outcome of a bake. Lightmap is only set when Success is
// true.
type Result struct {
	JobID     uuid.UUID
	Success   bool
	Cancelled bool
	Error     string
	Lightmap  *Lightmap
}

// Baker runs one bake at a time.
type Baker struct {
	settings Settings
	tracer   Tracer
	logger   *zap.Logger

	status   atomic.Int32
	progress atomic.Uint64 // float64 bits

	kernelMu      sync.Mutex
	kernelWeights []float32
	kernelRadius  int
	kernelBuilds  int
}

// NewBaker creates a baker. tracer may be nil to bake without shadows.
func NewBaker(settings Settings, tracer Tracer, logger *zap.Logger) *Baker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Baker{
		settings: settings,
		tracer:   tracer,
		logger:   logger.Named("lightmap"),
	}
}

// Settings returns the settings the baker was created with.
func (b *Baker) Settings() Settings {
	return b.settings
}

// Status returns the current state.
func (b *Baker) Status() Status {
	return Status(b.status.Load())
}

// Progress returns the progress of the current or last bake in [0,1].
func (b *Baker) Progress() float64 {
	return gomath.Float64frombits(b.progress.Load())
}

func (b *Baker) setProgress(p float64) {
	b.progress.Store(gomath.Float64bits(p))
}

// Bake runs a bake and blocks until it ends. Failures, including a bake
// already in progress, are reported in the result.
func (b *Baker) Bake(ctx context.Context, job Job) Result {
	id := uuid.New()
	if !b.begin() {
		return Result{JobID: id, Error: ErrBakeInProgress.Error()}
	}
	return b.bake(ctx, id, job)
}

// BakeAsync starts a bake in the background. The in-progress check happens
// before it returns; the channel receives exactly one result.
func (b *Baker) BakeAsync(ctx context.Context, job Job) <-chan Result {
	out := make(chan Result, 1)
	id := uuid.New()
	if !b.begin() {
		out <- Result{JobID: id, Error: ErrBakeInProgress.Error()}
		close(out)
		return out
	}
	go func() {
		defer close(out)
		out <- b.bake(ctx, id, job)
	}()
	return out
}

// begin moves the baker into StatusBaking unless a bake is running.
func (b *Baker) begin() bool {
	for {
		cur := b.status.Load()
		if Status(cur) == StatusBaking {
			return false
		}
		if b.status.CompareAndSwap(cur, int32(StatusBaking)) {
			b.setProgress(0)
			return true
		}
	}
}

func (b *Baker) bake(ctx context.Context, id uuid.UUID, job Job) (res Result) {
	log := b.logger.With(zap.Stringer("job", id))
	start := time.Now()
	res.JobID = id

	defer func() {
		if r := recover(); r != nil {
			log.Error("lightmap bake panicked", zap.Any("panic", r))
			b.status.Store(int32(StatusFailed))
			res = Result{JobID: id, Error: fmt.Sprintf("bake panicked: %v", r)}
		}
	}()

	lm, err := b.run(ctx, job, log)
	switch {
	case err == nil:
		b.setProgress(1)
		b.status.Store(int32(StatusFinished))
		log.Info("lightmap bake finished",
			zap.Int("width", lm.Width),
			zap.Int("height", lm.Height),
			zap.Int("faces", len(lm.Regions)),
			zap.Duration("took", time.Since(start)))
		res.Success = true
		res.Lightmap = lm
	case ctx.Err() != nil:
		b.setProgress(0)
		b.status.Store(int32(StatusCancelled))
		log.Info("lightmap bake cancelled", zap.Duration("after", time.Since(start)))
		res.Cancelled = true
	default:
		b.status.Store(int32(StatusFailed))
		log.Warn("lightmap bake failed", zap.Error(err))
		res.Error = err.Error()
	}
	return res
}

func (b *Baker) run(ctx context.Context, job Job, log *zap.Logger) (*Lightmap, error) {
	s := b.settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	charts := buildCharts(job.Solids, s)
	if len(charts) == 0 {
		return nil, ErrNothingToBake
	}
	log.Info("lightmap bake started",
		zap.Int("faces", len(charts)),
		zap.Int("lights", len(job.Lights)),
		zap.Int("workers", workers))

	items := make([]pack.Rect, len(charts))
	for i, c := range charts {
		items[i] = pack.Rect{Width: c.size.X, Height: c.size.Y}
	}
	packed, used, err := pack.Pack(pack.Rect{Width: float64(s.Width), Height: float64(s.Height)}, items, s.Margin)
	if err != nil {
		return nil, fmt.Errorf("packing %d charts: %w", len(charts), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := pack.NextPowerOfTwo(int(used.X))
	height := pack.NextPowerOfTwo(int(used.Y))
	lm := formats.NewLightmap(width, height, s.Directional, s.ShadowMask)
	for i, c := range charts {
		c.rect = packed[i]
		c.assignUV1(width, height)
		lm.Regions = append(lm.Regions, c.region())
	}
	log.Debug("charts packed", zap.Int("width", width), zap.Int("height", height))

	if err := b.sample(ctx, lm, charts, job.Lights, workers); err != nil {
		return nil, err
	}

	if s.BlurStrength > 0 {
		owner := ownerMap(charts, width, height)
		if err := blur(ctx, lm, owner, b.kernel(s.BlurStrength), workers); err != nil {
			return nil, err
		}
	}
	b.setProgress(blurDone)

	if err := dilate(ctx, lm, workers); err != nil {
		return nil, err
	}
	return lm, ctx.Err()
}

// sample shades every chart in parallel. Charts never overlap, so tasks write
// disjoint parts of the lightmap.
func (b *Baker) sample(ctx context.Context, lm *Lightmap, charts []*chart, lights []lighting.Light, workers int) error {
	smp := &sampler{settings: b.settings, tracer: b.tracer, lights: lights, lm: lm}
	var done atomic.Int64
	total := float64(len(charts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range charts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("sampling face %d: %v", c.face.ID, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			smp.sampleChart(c)
			b.setProgress(samplingShare * float64(done.Add(1)) / total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
