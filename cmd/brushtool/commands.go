package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-editor/internal/assets"
	"github.com/Faultbox/midgard-editor/internal/config"
	"github.com/Faultbox/midgard-editor/internal/engine/camera"
	"github.com/Faultbox/midgard-editor/internal/engine/lighting"
	"github.com/Faultbox/midgard-editor/internal/engine/lightmap"
	"github.com/Faultbox/midgard-editor/internal/engine/picking"
	"github.com/Faultbox/midgard-editor/internal/mapfile"
	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/formats"
	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// progressInterval is how often a running bake reports progress.
const progressInterval = 500 * time.Millisecond

// loadedMap is a map document with its built geometry.
type loadedMap struct {
	doc    *mapfile.Document
	ids    *brush.IDGenerator
	solids []*brush.Solid
	lights []lighting.Light
}

type app struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func newApp(cfg *config.Config, log *zap.Logger, out io.Writer) *app {
	return &app{cfg: cfg, log: log, out: out}
}

func (a *app) splitOptions() brush.SplitOptions {
	opts := brush.DefaultSplitOptions()
	opts.Epsilon = a.cfg.Geometry.Epsilon
	opts.WeldEpsilon = a.cfg.Geometry.WeldEpsilon
	return opts
}

func (a *app) loadMap(path string) (*loadedMap, error) {
	doc, err := mapfile.Load(path)
	if err != nil {
		return nil, err
	}
	ids := brush.NewIDGenerator()
	solids, lights, err := doc.Build(ids, a.cfg.Geometry.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", path, err)
	}

	if a.cfg.Assets.Catalog != "" {
		catalog, err := assets.LoadCatalog(a.cfg.Assets.Catalog)
		if err != nil {
			return nil, err
		}
		if root := a.cfg.Assets.TextureRoot; root != "" {
			resolved, err := catalog.ResolveSizes(root)
			if err != nil {
				a.log.Warn("reading texture sizes", zap.String("root", root), zap.Error(err))
			}
			a.log.Debug("texture sizes resolved", zap.Int("textures", resolved))
		}
		matched := catalog.Apply(solids)
		a.log.Debug("texture catalog applied",
			zap.String("catalog", a.cfg.Assets.Catalog),
			zap.Int("faces", matched))
	}

	a.log.Debug("map loaded",
		zap.String("path", path),
		zap.Int("solids", len(solids)),
		zap.Int("lights", len(lights)))
	return &loadedMap{doc: doc, ids: ids, solids: solids, lights: lights}, nil
}

// saveMap writes solids to path, or to the app output when path is empty.
func (a *app) saveMap(m *loadedMap, path string) error {
	doc := mapfile.FromSolids(m.solids, m.lights, m.doc.Ambient)
	if path == "" {
		return doc.Write(a.out)
	}
	if err := doc.Save(path); err != nil {
		return err
	}
	a.log.Info("map written", zap.String("path", path), zap.Int("solids", len(m.solids)))
	return nil
}

func (m *loadedMap) find(id int64) (*brush.Solid, error) {
	for _, s := range m.solids {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("solid %d not found", id)
}

// replace swaps solids by ID for their pieces, keeping the list order.
func (m *loadedMap) replace(pieces map[int64][]*brush.Solid) {
	out := make([]*brush.Solid, 0, len(m.solids))
	for _, s := range m.solids {
		if p, ok := pieces[s.ID]; ok {
			out = append(out, p...)
			continue
		}
		out = append(out, s)
	}
	m.solids = out
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func mapArg(fs *flag.FlagSet, usage string) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("usage: brushtool %s", usage)
	}
	return fs.Arg(0), nil
}

func (a *app) cmdInfo(args []string) error {
	fs := newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := mapArg(fs, "info <map.yaml>")
	if err != nil {
		return err
	}
	m, err := a.loadMap(path)
	if err != nil {
		return err
	}

	bounds := math.EmptyBox()
	var faces, lit int
	var volume float64
	for _, s := range m.solids {
		bounds = bounds.Union(s.Bounds())
		faces += len(s.Faces)
		volume += s.Volume()
		for _, f := range s.Faces {
			if !f.Texture.IsEmpty() && !f.DisableInLightmap {
				lit++
			}
		}
	}

	fmt.Fprintf(a.out, "Map:     %s\n", path)
	fmt.Fprintf(a.out, "Solids:  %d\n", len(m.solids))
	fmt.Fprintf(a.out, "Faces:   %d (%d lightmapped)\n", faces, lit)
	fmt.Fprintf(a.out, "Lights:  %d\n", len(m.lights))
	fmt.Fprintf(a.out, "Volume:  %.2f\n", volume)
	if !bounds.IsEmpty() {
		fmt.Fprintf(a.out, "Bounds:  (%g, %g, %g) - (%g, %g, %g)\n",
			bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
			bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	}
	fmt.Fprintln(a.out)
	for _, s := range m.solids {
		fmt.Fprintf(a.out, "  solid %-6d faces %-3d volume %.2f\n", s.ID, len(s.Faces), s.Volume())
	}
	return nil
}

// parsePlane reads "nx,ny,nz,d".
func parsePlane(s string) (geom.Plane, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Plane{}, fmt.Errorf("plane %q: want nx,ny,nz,d", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Plane{}, fmt.Errorf("plane %q: %w", s, err)
		}
		v[i] = f
	}
	return geom.NewPlane(math.Vec3{X: v[0], Y: v[1], Z: v[2]}, v[3])
}

func (a *app) cmdClip(args []string) error {
	fs := newFlagSet("clip")
	planeStr := fs.String("plane", "", "Clip plane as nx,ny,nz,d")
	keepStr := fs.String("keep", "both", "Halves to keep: front, back or both")
	solidID := fs.Int64("solid", 0, "Only clip this solid (0 = all)")
	output := fs.String("o", "", "Output map (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := mapArg(fs, "clip -plane nx,ny,nz,d <map.yaml>")
	if err != nil {
		return err
	}
	plane, err := parsePlane(*planeStr)
	if err != nil {
		return err
	}
	keep, err := brush.ParseClipKeep(*keepStr)
	if err != nil {
		return err
	}
	m, err := a.loadMap(path)
	if err != nil {
		return err
	}

	targets := m.solids
	if *solidID != 0 {
		s, err := m.find(*solidID)
		if err != nil {
			return err
		}
		targets = []*brush.Solid{s}
	}

	pieces := make(map[int64][]*brush.Solid)
	for _, s := range targets {
		halves, ok, err := brush.Clip(s, plane, keep, m.ids, a.splitOptions())
		if err != nil {
			return fmt.Errorf("clipping solid %d: %w", s.ID, err)
		}
		if ok {
			pieces[s.ID] = halves
		}
	}
	a.log.Info("clip done", zap.Int("clipped", len(pieces)), zap.Int("targets", len(targets)))
	m.replace(pieces)
	return a.saveMap(m, *output)
}

func (a *app) cmdCarve(args []string) error {
	fs := newFlagSet("carve")
	carverID := fs.Int64("carver", 0, "ID of the carving solid")
	output := fs.String("o", "", "Output map (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := mapArg(fs, "carve -carver ID <map.yaml>")
	if err != nil {
		return err
	}
	m, err := a.loadMap(path)
	if err != nil {
		return err
	}
	carver, err := m.find(*carverID)
	if err != nil {
		return err
	}

	scene := picking.NewScene(m.solids, a.log)
	pieces := make(map[int64][]*brush.Solid)
	for _, target := range scene.Query(carver.Bounds()) {
		if target == carver {
			continue
		}
		rest, ok, err := brush.Carve(target, carver, m.ids, a.splitOptions())
		if err != nil {
			return err
		}
		if ok {
			pieces[target.ID] = rest
		}
	}
	a.log.Info("carve done", zap.Int64("carver", carver.ID), zap.Int("carved", len(pieces)))
	m.replace(pieces)
	return a.saveMap(m, *output)
}

func (a *app) cmdHollow(args []string) error {
	fs := newFlagSet("hollow")
	solidID := fs.Int64("solid", 0, "ID of the solid to hollow")
	thickness := fs.Float64("thickness", 8, "Wall thickness")
	output := fs.String("o", "", "Output map (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := mapArg(fs, "hollow -solid ID -thickness T <map.yaml>")
	if err != nil {
		return err
	}
	m, err := a.loadMap(path)
	if err != nil {
		return err
	}
	s, err := m.find(*solidID)
	if err != nil {
		return err
	}

	walls, ok, err := brush.Hollow(s, *thickness, m.ids, a.splitOptions())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("solid %d is too thin for walls of %g", s.ID, *thickness)
	}
	m.replace(map[int64][]*brush.Solid{s.ID: walls})
	return a.saveMap(m, *output)
}

func (a *app) cmdPick(args []string) error {
	fs := newFlagSet("pick")
	width := fs.Int("vw", 800, "Viewport width in pixels")
	height := fs.Int("vh", 600, "Viewport height in pixels")
	x := fs.Float64("x", -1, "Pixel column (default viewport center)")
	y := fs.Float64("y", -1, "Pixel row (default viewport center)")
	yaw := fs.Float64("yaw", 0, "Camera yaw in degrees")
	pitch := fs.Float64("pitch", 35, "Camera pitch in degrees")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := mapArg(fs, "pick [-x X -y Y] <map.yaml>")
	if err != nil {
		return err
	}
	if *width <= 0 || *height <= 0 {
		return fmt.Errorf("pick: invalid viewport %dx%d", *width, *height)
	}
	m, err := a.loadMap(path)
	if err != nil {
		return err
	}

	vw, vh := float64(*width), float64(*height)
	if *x < 0 {
		*x = vw / 2
	}
	if *y < 0 {
		*y = vh / 2
	}

	scene := picking.NewScene(m.solids, a.log)
	cam := camera.NewOrbitCamera()
	cam.FitToBounds(scene.Bounds())
	cam.Yaw = mgl64.DegToRad(*yaw)
	cam.Pitch = min(max(mgl64.DegToRad(*pitch), cam.MinPitch), cam.MaxPitch)

	frustum, err := cam.Frustum(vw / vh)
	if err != nil {
		return err
	}
	visible := scene.Cull(frustum)
	fmt.Fprintf(a.out, "Visible: %d of %d solids\n", len(visible), scene.Len())

	res := scene.Pick(cam.Ray(*x, *y, vw, vh))
	if !res.Hit {
		fmt.Fprintln(a.out, "No hit")
		return nil
	}
	face := "inside"
	if res.Face != nil {
		face = fmt.Sprintf("face %d", res.Face.ID)
	}
	fmt.Fprintf(a.out, "Hit: solid %d %s at (%.2f, %.2f, %.2f) distance %.2f\n",
		res.Solid.ID, face, res.Position.X, res.Position.Y, res.Position.Z, res.Distance)
	return nil
}

func (a *app) cmdBake(args []string) error {
	fs := newFlagSet("bake")
	output := fs.String("o", "", "Output lightmap file (.lmap)")
	preview := fs.String("tiff", "", "Optional 16-bit TIFF preview")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := mapArg(fs, "bake -o out.lmap <map.yaml>")
	if err != nil {
		return err
	}
	if *output == "" {
		return errors.New("bake: -o is required")
	}
	m, err := a.loadMap(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := a.bake(ctx, m)
	if err != nil {
		return err
	}
	if err := formats.WriteLightmapFile(*output, res.Lightmap); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Baked: %s (%dx%d, %d faces)\n",
		*output, res.Lightmap.Width, res.Lightmap.Height, len(res.Lightmap.Regions))

	if *preview != "" {
		if err := formats.WriteTIFFFile(*preview, res.Lightmap); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Preview: %s\n", *preview)
	}
	return nil
}

// bake runs the baker in the background and logs progress until it ends.
func (a *app) bake(ctx context.Context, m *loadedMap) (lightmap.Result, error) {
	settings := a.cfg.Lightmap.Settings()
	settings.Ambient = m.doc.AmbientOr(settings.Ambient)

	scene := picking.NewScene(m.solids, a.log)
	baker := lightmap.NewBaker(settings, scene, a.log)
	results := baker.BakeAsync(ctx, lightmap.Job{Solids: m.solids, Lights: m.lights})

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case res := <-results:
			switch {
			case res.Cancelled:
				return res, errors.New("bake cancelled")
			case !res.Success:
				return res, fmt.Errorf("bake failed: %s", res.Error)
			}
			return res, nil
		case <-ticker.C:
			a.log.Info("baking", zap.String("progress", fmt.Sprintf("%.0f%%", baker.Progress()*100)))
		}
	}
}
