package lightmap

import (
	"context"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-editor/pkg/formats"
)

// kernel returns normalized Gaussian weights for sigma, indexed from -radius
// to radius. The weights are cached and only rebuilt when the radius
// changes.
func (b *Baker) kernel(sigma float32) []float32 {
	radius := int(math32.Ceil(3 * sigma))

	b.kernelMu.Lock()
	defer b.kernelMu.Unlock()
	if b.kernelWeights != nil && b.kernelRadius == radius {
		return b.kernelWeights
	}

	weights := make([]float32, 2*radius+1)
	var sum float32
	for i := -radius; i <= radius; i++ {
		w := math32.Exp(-float32(i*i) / (2 * sigma * sigma))
		weights[i+radius] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	b.kernelWeights, b.kernelRadius = weights, radius
	b.kernelBuilds++
	return weights
}

// ownerMap marks every texel with its chart index + 1; 0 means unowned.
func ownerMap(charts []*chart, width, height int) []int32 {
	owner := make([]int32, width*height)
	for i, c := range charts {
		x0, y0, x1, y1 := c.texels()
		for y := max(y0, 0); y < min(y1, height); y++ {
			for x := max(x0, 0); x < min(x1, width); x++ {
				owner[y*width+x] = int32(i + 1)
			}
		}
	}
	return owner
}

// blur runs a separable Gaussian over the color buffer. Neighbors from other
// charts are skipped and the weights renormalized, so colors never bleed
// between charts packed next to each other.
func blur(ctx context.Context, lm *formats.Lightmap, owner []int32, weights []float32, workers int) error {
	if len(weights) <= 1 {
		return nil
	}
	if err := blurPass(ctx, lm, owner, weights, 1, 0, workers); err != nil {
		return err
	}
	return blurPass(ctx, lm, owner, weights, 0, 1, workers)
}

// blurPass filters along (dx, dy). Each row is computed by its own task into
// a scratch buffer, which is copied back once every row is done.
func blurPass(ctx context.Context, lm *formats.Lightmap, owner []int32, weights []float32, dx, dy, workers int) error {
	radius := len(weights) / 2
	w, h := lm.Width, lm.Height
	src := lm.Data
	scratch := make([]float32, len(src))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for x := 0; x < w; x++ {
				idx := y*w + x
				o := owner[idx]
				if o == 0 {
					copy(scratch[idx*3:idx*3+3], src[idx*3:idx*3+3])
					continue
				}
				var r, gr, b, sum float32
				for k := -radius; k <= radius; k++ {
					nx := min(max(x+k*dx, 0), w-1)
					ny := min(max(y+k*dy, 0), h-1)
					n := ny*w + nx
					if owner[n] != o {
						continue
					}
					wt := weights[k+radius]
					r += src[n*3] * wt
					gr += src[n*3+1] * wt
					b += src[n*3+2] * wt
					sum += wt
				}
				scratch[idx*3] = r / sum
				scratch[idx*3+1] = gr / sum
				scratch[idx*3+2] = b / sum
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	copy(lm.Data, scratch)
	return ctx.Err()
}

// dilate fills every exactly black texel with the average of its non-black
// 8-neighbors. It is a single pass: gaps wider than one texel keep their
// black interior.
func dilate(ctx context.Context, lm *formats.Lightmap, workers int) error {
	w, h := lm.Width, lm.Height
	src := make([]float32, len(lm.Data))
	copy(src, lm.Data)
	black := func(i int) bool {
		return src[i*3] == 0 && src[i*3+1] == 0 && src[i*3+2] == 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for x := 0; x < w; x++ {
				idx := y*w + x
				if !black(idx) {
					continue
				}
				var r, gr, b float32
				var count int
				for oy := -1; oy <= 1; oy++ {
					for ox := -1; ox <= 1; ox++ {
						nx, ny := x+ox, y+oy
						if (ox == 0 && oy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						n := ny*w + nx
						if black(n) {
							continue
						}
						r += src[n*3]
						gr += src[n*3+1]
						b += src[n*3+2]
						count++
					}
				}
				if count > 0 {
					inv := 1 / float32(count)
					lm.Data[idx*3] = r * inv
					lm.Data[idx*3+1] = gr * inv
					lm.Data[idx*3+2] = b * inv
				}
			}
			return nil
		})
	}
	return g.Wait()
}
