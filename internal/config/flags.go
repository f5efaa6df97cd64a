package config

import "flag"

// overrides holds the global command-line settings. Zero or negative values
// mean "not given" except where a flag documents otherwise.
type overrides struct {
	path    string
	debug   bool
	epsilon float64
	texel   float64
	blur    float64
	workers int
	width   int
	height  int
}

var cli = bindOverrides(flag.CommandLine)

func bindOverrides(fs *flag.FlagSet) *overrides {
	o := &overrides{}
	fs.StringVar(&o.path, "config", "", "Path to config file")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&o.epsilon, "epsilon", 0, "Plane classification epsilon")
	fs.Float64Var(&o.texel, "texel", 0, "Lightmap texel size in world units")
	fs.Float64Var(&o.blur, "blur", -1, "Lightmap blur strength (0 disables)")
	fs.IntVar(&o.workers, "workers", -1, "Bake workers (0 = all CPUs)")
	fs.IntVar(&o.width, "width", 0, "Maximum lightmap width")
	fs.IntVar(&o.height, "height", 0, "Maximum lightmap height")
	return o
}

// ParseFlags parses the process command line. Call it early in main.
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the path given with -config, if any.
func ConfigPath() string {
	return cli.path
}

func applyFlags(cfg *Config) {
	cli.apply(cfg)
}

func (o *overrides) apply(cfg *Config) {
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	if o.epsilon > 0 {
		cfg.Geometry.Epsilon = o.epsilon
	}
	if o.texel > 0 {
		cfg.Lightmap.TexelSize = o.texel
	}
	if o.blur >= 0 {
		cfg.Lightmap.BlurStrength = float32(o.blur)
	}
	if o.workers >= 0 {
		cfg.Lightmap.Workers = o.workers
	}
	if o.width > 0 {
		cfg.Lightmap.Width = o.width
	}
	if o.height > 0 {
		cfg.Lightmap.Height = o.height
	}
}
