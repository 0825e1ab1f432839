package app

import (
	"io"
	"os"
	"strings"

	C "diesel.com/cloth/cloth"
	G "diesel.com/cloth/geometry"
	V "diesel.com/cloth/vector"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//EnvPrefix prefixes every environment override, CLOTH_CLOTH_WIDTH sets cloth.width
const EnvPrefix = "CLOTH"

//Config is the file schema of a cloth run. Vectors are stored as 3 element slices so the
//same struct decodes from toml, yaml, json and comma separated environment values.
type Config struct {
	Cloth  ClothConfig  `mapstructure:"cloth" toml:"cloth"`
	Sphere SphereConfig `mapstructure:"sphere" toml:"sphere"`
	Ground GroundConfig `mapstructure:"ground" toml:"ground"`
	Run    RunConfig    `mapstructure:"run" toml:"run"`
	View   ViewConfig   `mapstructure:"view" toml:"view"`
}

type ClothConfig struct {
	Width          int       `mapstructure:"width" toml:"width"`
	Height         int       `mapstructure:"height" toml:"height"`
	Distance       float32   `mapstructure:"distance" toml:"distance"`
	Origin         []float32 `mapstructure:"origin" toml:"origin"`
	Orientation    string    `mapstructure:"orientation" toml:"orientation"`
	StretchedStart float32   `mapstructure:"stretched_start" toml:"stretched_start"`
	InvMass        float32   `mapstructure:"inv_mass" toml:"inv_mass"`
	SpringFactor   float32   `mapstructure:"spring_factor" toml:"spring_factor"`
	DampingFactor  float32   `mapstructure:"damping_factor" toml:"damping_factor"`
	AirResistance  float32   `mapstructure:"air_resistance" toml:"air_resistance"`
	Gravity        float32   `mapstructure:"gravity" toml:"gravity"`
	Wind           []float32 `mapstructure:"wind" toml:"wind"`
	GustInterval   int       `mapstructure:"gust_interval" toml:"gust_interval"`
	CollisionDelta float32   `mapstructure:"collision_delta" toml:"collision_delta"`
	Pin            string    `mapstructure:"pin" toml:"pin"`
	TimeStep       float32   `mapstructure:"time_step" toml:"time_step"`
}

type SphereConfig struct {
	Enabled bool      `mapstructure:"enabled" toml:"enabled"`
	Center  []float32 `mapstructure:"center" toml:"center"`
	Radius  float32   `mapstructure:"radius" toml:"radius"`
}

type GroundConfig struct {
	Enabled bool    `mapstructure:"enabled" toml:"enabled"`
	Y       float32 `mapstructure:"y" toml:"y"`
}

//RunConfig drives the Scene. A zero TickRate runs one tick per TimeStep of wall time.
type RunConfig struct {
	TickRate        float64 `mapstructure:"tick_rate" toml:"tick_rate"`
	Seed            int64   `mapstructure:"seed" toml:"seed"`
	Ticks           int     `mapstructure:"ticks" toml:"ticks"`
	DivergenceLimit float32 `mapstructure:"divergence_limit" toml:"divergence_limit"`
}

type ViewConfig struct {
	Width     int     `mapstructure:"width" toml:"width"`
	Height    int     `mapstructure:"height" toml:"height"`
	Title     string  `mapstructure:"title" toml:"title"`
	FrameRate int     `mapstructure:"frame_rate" toml:"frame_rate"`
	Zoom      float64 `mapstructure:"zoom" toml:"zoom"`
	Wireframe bool    `mapstructure:"wireframe" toml:"wireframe"`
}

//DefaultConfig mirrors cloth.DefaultConfig and cloth.DefaultColliders
func DefaultConfig() Config {
	p := C.DefaultConfig()
	col := C.DefaultColliders()
	return Config{
		Cloth: ClothConfig{
			Width:          p.Width,
			Height:         p.Height,
			Distance:       p.Distance,
			Origin:         slice(p.Origin),
			Orientation:    p.Orientation.String(),
			StretchedStart: p.StretchedStart,
			InvMass:        p.InvMass,
			SpringFactor:   p.SpringFactor,
			DampingFactor:  p.DampingFactor,
			AirResistance:  p.AirResistance,
			Gravity:        p.Gravity,
			Wind:           slice(p.Wind),
			GustInterval:   p.GustInterval,
			CollisionDelta: p.CollisionDelta,
			Pin:            p.Pin.String(),
			TimeStep:       p.TimeStep,
		},
		Sphere: SphereConfig{Enabled: true, Center: slice(col.Sphere.Center), Radius: col.Sphere.Radius},
		Ground: GroundConfig{Enabled: true, Y: col.Ground.Y},
		Run:    RunConfig{Seed: 1, Ticks: 600, DivergenceLimit: p.DivergenceLimit},
		View:   ViewConfig{Width: 1280, Height: 720, Title: "Diesel Cloth", FrameRate: 30, Zoom: 1, Wireframe: true},
	}
}

//LoadEnv loads a dotenv file into the process environment. An empty path loads ./.env
//when it exists.
func LoadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	return errors.Wrapf(godotenv.Load(path), "loading env file %s", path)
}

//LoadConfig layers defaults, the optional config file at path and CLOTH_ environment
//overrides. The file format follows the extension (toml, yaml, json).
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]interface{}{
		"cloth.width":           d.Cloth.Width,
		"cloth.height":          d.Cloth.Height,
		"cloth.distance":        d.Cloth.Distance,
		"cloth.origin":          d.Cloth.Origin,
		"cloth.orientation":     d.Cloth.Orientation,
		"cloth.stretched_start": d.Cloth.StretchedStart,
		"cloth.inv_mass":        d.Cloth.InvMass,
		"cloth.spring_factor":   d.Cloth.SpringFactor,
		"cloth.damping_factor":  d.Cloth.DampingFactor,
		"cloth.air_resistance":  d.Cloth.AirResistance,
		"cloth.gravity":         d.Cloth.Gravity,
		"cloth.wind":            d.Cloth.Wind,
		"cloth.gust_interval":   d.Cloth.GustInterval,
		"cloth.collision_delta": d.Cloth.CollisionDelta,
		"cloth.pin":             d.Cloth.Pin,
		"cloth.time_step":       d.Cloth.TimeStep,
		"sphere.enabled":        d.Sphere.Enabled,
		"sphere.center":         d.Sphere.Center,
		"sphere.radius":         d.Sphere.Radius,
		"ground.enabled":        d.Ground.Enabled,
		"ground.y":              d.Ground.Y,
		"run.tick_rate":         d.Run.TickRate,
		"run.seed":              d.Run.Seed,
		"run.ticks":             d.Run.Ticks,
		"run.divergence_limit":  d.Run.DivergenceLimit,
		"view.width":            d.View.Width,
		"view.height":           d.View.Height,
		"view.title":            d.View.Title,
		"view.frame_rate":       d.View.FrameRate,
		"view.zoom":             d.View.Zoom,
		"view.wireframe":        d.View.Wireframe,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

//WriteConfig encodes cfg as TOML
func WriteConfig(w io.Writer, cfg Config) error {
	return errors.Wrap(toml.NewEncoder(w).Encode(cfg), "encoding config")
}

//Physics converts the file schema into a validated core configuration
func (c Config) Physics() (C.Config, error) {
	orientation, err := C.ParseOrientation(c.Cloth.Orientation)
	if err != nil {
		return C.Config{}, err
	}
	pin, err := C.ParsePinMode(c.Cloth.Pin)
	if err != nil {
		return C.Config{}, err
	}
	origin, err := vec3("cloth.origin", c.Cloth.Origin)
	if err != nil {
		return C.Config{}, err
	}
	wind, err := vec3("cloth.wind", c.Cloth.Wind)
	if err != nil {
		return C.Config{}, err
	}

	p := C.Config{
		Width:           c.Cloth.Width,
		Height:          c.Cloth.Height,
		Distance:        c.Cloth.Distance,
		Origin:          origin,
		Orientation:     orientation,
		StretchedStart:  c.Cloth.StretchedStart,
		InvMass:         c.Cloth.InvMass,
		SpringFactor:    c.Cloth.SpringFactor,
		DampingFactor:   c.Cloth.DampingFactor,
		AirResistance:   c.Cloth.AirResistance,
		Gravity:         c.Cloth.Gravity,
		Wind:            wind,
		GustInterval:    c.Cloth.GustInterval,
		CollisionDelta:  c.Cloth.CollisionDelta,
		Pin:             pin,
		TimeStep:        c.Cloth.TimeStep,
		DivergenceLimit: c.Run.DivergenceLimit,
	}
	return p, p.Validate()
}

//Colliders builds the enabled colliders
func (c Config) Colliders() (C.Colliders, error) {
	var col C.Colliders
	if c.Ground.Enabled {
		col.Ground = &G.Plane{Y: c.Ground.Y}
	}
	if c.Sphere.Enabled {
		center, err := vec3("sphere.center", c.Sphere.Center)
		if err != nil {
			return C.Colliders{}, err
		}
		col.Sphere = &G.Sphere{Center: center, Radius: c.Sphere.Radius}
	}
	return col, col.Validate()
}

//TickInterval wall time between ticks at the configured rate
func (c Config) TickInterval() float64 {
	if c.Run.TickRate > 0 {
		return 1 / c.Run.TickRate
	}
	return float64(c.Cloth.TimeStep)
}

func vec3(name string, s []float32) (V.Vec32, error) {
	if len(s) != 3 {
		return V.Vec32{}, errors.Wrapf(C.ErrInvalidConfig, "%s needs 3 components, got %d", name, len(s))
	}
	return V.Vec32{s[0], s[1], s[2]}, nil
}

func slice(v V.Vec32) []float32 {
	return []float32{v[0], v[1], v[2]}
}
