package settings

import (
	"fmt"
	"io"
	"os"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaStore loads settings from a Lua script. The script assigns a table to
// clock.settings using snake_case keys:
//
//	clock.settings = {
//	    preset = "sunset",
//	    clock_size = 0.7,
//	    second_hand_color = clock.rgb(0, 255, 171),
//	    collage_images = { "$HOME/a.jpg", { uri = "b.png", x = 0.5, rotation = 10 } },
//	}
//
// Keys that are absent keep the value of the preset (or Default()).
// Scripts run with CPU and memory limits. A LuaStore is read-only.
type LuaStore struct {
	Path string
}

// NewLuaStore returns a store reading the script at path.
func NewLuaStore(path string) *LuaStore {
	return &LuaStore{Path: path}
}

// Load implements Store.
func (l *LuaStore) Load() (WallpaperSettings, error) {
	content, err := os.ReadFile(l.Path)
	if err != nil {
		return WallpaperSettings{}, fmt.Errorf("read settings script %s: %w", l.Path, err)
	}
	s, err := ParseLua(content)
	if err != nil {
		return WallpaperSettings{}, fmt.Errorf("%s: %w", l.Path, err)
	}
	return ExpandImageRefs(s), nil
}

// Save implements Store.
func (l *LuaStore) Save(WallpaperSettings) error {
	return ErrReadOnly
}

// ParseLua evaluates a settings script and returns the resulting snapshot.
func ParseLua(content []byte) (s WallpaperSettings, err error) {
	// golua panics when a hard resource limit is exceeded.
	defer func() {
		if r := recover(); r != nil {
			s, err = WallpaperSettings{}, fmt.Errorf("failed to execute settings script: %v", r)
		}
	}()

	runtime := rt.New(io.Discard)
	cleanup := lib.LoadAll(runtime)
	defer cleanup()

	clockTable := rt.NewTable()
	clockTable.Set(rt.StringValue("settings"), rt.TableValue(rt.NewTable()))
	setGoFunction(clockTable, "rgb", luaRGB, 3)
	setGoFunction(clockTable, "rgba", luaRGBA, 4)
	runtime.GlobalEnv().Set(rt.StringValue("clock"), rt.TableValue(clockTable))

	closure, err := runtime.CompileAndLoadLuaChunk("settings", content, rt.TableValue(runtime.GlobalEnv()))
	if err != nil {
		return WallpaperSettings{}, fmt.Errorf("failed to compile settings script: %w", err)
	}

	runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024, // 50 MB
		},
	})
	defer runtime.PopContext()

	if _, err := rt.Call1(runtime.MainThread(), rt.FunctionValue(closure)); err != nil {
		return WallpaperSettings{}, fmt.Errorf("failed to execute settings script: %w", err)
	}

	table, ok := clockTable.Get(rt.StringValue("settings")).TryTable()
	if !ok {
		return WallpaperSettings{}, fmt.Errorf("clock.settings is not a table")
	}
	return extractSettings(table)
}

func setGoFunction(table *rt.Table, name string, fn rt.GoFunctionFunc, nArgs int) {
	goFunc := rt.NewGoFunction(fn, name, nArgs, false)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	table.Set(rt.StringValue(name), rt.FunctionValue(goFunc))
}

// luaRGB implements clock.rgb(r, g, b) and returns a "#AARRGGBB" string.
func luaRGB(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	ch, err := channelArgs(c, 3)
	if err != nil {
		return nil, fmt.Errorf("rgb: %w", err)
	}
	col := RGB(ch[0], ch[1], ch[2])
	return c.PushingNext1(t.Runtime, rt.StringValue(col.String())), nil
}

// luaRGBA implements clock.rgba(r, g, b, a).
func luaRGBA(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	ch, err := channelArgs(c, 4)
	if err != nil {
		return nil, fmt.Errorf("rgba: %w", err)
	}
	col := ARGBFrom(ch[3], ch[0], ch[1], ch[2])
	return c.PushingNext1(t.Runtime, rt.StringValue(col.String())), nil
}

func channelArgs(c *rt.GoCont, n int) ([]uint8, error) {
	out := make([]uint8, n)
	for i := range out {
		v, err := c.IntArg(i)
		if err != nil {
			return nil, err
		}
		out[i] = uint8(max(0, min(255, v)))
	}
	return out, nil
}

// extractSettings overlays the script's table on its base snapshot.
func extractSettings(table *rt.Table) (WallpaperSettings, error) {
	s := Default()
	if name := getTableString(table, "preset"); name != nil {
		p, err := Preset(*name)
		if err != nil {
			return WallpaperSettings{}, err
		}
		s = p
	}

	if val := getTableString(table, "background_type"); val != nil {
		bt, err := ParseBackgroundType(*val)
		if err != nil {
			return WallpaperSettings{}, fmt.Errorf("invalid background_type: %w", err)
		}
		s.BackgroundType = bt
	}
	if val := getTableString(table, "collage_layout"); val != nil {
		cl, err := ParseCollageLayout(*val)
		if err != nil {
			return WallpaperSettings{}, fmt.Errorf("invalid collage_layout: %w", err)
		}
		s.CollageLayout = cl
	}

	boolFields := []struct {
		key    string
		target *bool
	}{
		{"show_border", &s.ShowBorder},
		{"show_numerals", &s.ShowNumerals},
		{"show_second_hand", &s.ShowSecondHand},
		{"smooth_second_hand", &s.SmoothSecondHand},
		{"show_date", &s.ShowDate},
		{"show_day", &s.ShowDay},
	}
	for _, f := range boolFields {
		if val := getTableBool(table, f.key); val != nil {
			*f.target = *val
		}
	}

	floatFields := []struct {
		key    string
		target *float64
	}{
		{"image_spacing", &s.ImageSpacing},
		{"collage_opacity", &s.CollageOpacity},
		{"clock_size", &s.ClockSize},
		{"border_width", &s.BorderWidth},
		{"numeral_size", &s.NumeralSize},
		{"hour_hand_width", &s.HourHandWidth},
		{"minute_hand_width", &s.MinuteHandWidth},
		{"second_hand_width", &s.SecondHandWidth},
		{"center_knob_radius", &s.CenterKnobRadius},
		{"center_ring_width", &s.CenterRingWidth},
		{"date_size", &s.DateSize},
		{"day_size", &s.DaySize},
	}
	for _, f := range floatFields {
		if val := getTableFloat(table, f.key); val != nil {
			*f.target = *val
		}
	}

	colorFields := []struct {
		key    string
		target *ARGB
	}{
		{"background_color", &s.BackgroundColor},
		{"gradient_start", &s.GradientStartColor},
		{"gradient_end", &s.GradientEndColor},
		{"border_color", &s.BorderColor},
		{"numeral_color", &s.NumeralColor},
		{"hour_hand_color", &s.HourHandColor},
		{"minute_hand_color", &s.MinuteHandColor},
		{"second_hand_color", &s.SecondHandColor},
		{"center_knob_color", &s.CenterKnobColor},
		{"center_ring_color", &s.CenterRingColor},
		{"date_color", &s.DateColor},
		{"day_color", &s.DayColor},
	}
	for _, f := range colorFields {
		c, err := getTableColor(table, f.key)
		if err != nil {
			return WallpaperSettings{}, err
		}
		if c != nil {
			*f.target = *c
		}
	}

	if imagesTable, ok := table.Get(rt.StringValue("collage_images")).TryTable(); ok {
		images, err := extractImages(imagesTable)
		if err != nil {
			return WallpaperSettings{}, err
		}
		s.CollageImages = images
	}

	return s, nil
}

// extractImages reads the collage_images array. Entries are either a bare
// uri string or a table with a uri key and optional placement keys.
func extractImages(table *rt.Table) ([]CollageImage, error) {
	var images []CollageImage
	for i := int64(1); ; i++ {
		val := table.Get(rt.IntValue(i))
		if val == rt.NilValue {
			break
		}
		if uri, ok := val.TryString(); ok {
			img := NewCollageImage(uri)
			img.ZIndex = int(i - 1)
			images = append(images, img)
			continue
		}
		entry, ok := val.TryTable()
		if !ok {
			return nil, fmt.Errorf("collage_images[%d] must be a string or table", i)
		}
		uri := getTableString(entry, "uri")
		if uri == nil || *uri == "" {
			return nil, fmt.Errorf("collage_images[%d] has no uri", i)
		}
		img := NewCollageImage(*uri)
		img.ZIndex = int(i - 1)
		for _, f := range []struct {
			key    string
			target *float64
		}{
			{"x", &img.X},
			{"y", &img.Y},
			{"width", &img.Width},
			{"height", &img.Height},
			{"rotation", &img.Rotation},
			{"opacity", &img.Opacity},
		} {
			if v := getTableFloat(entry, f.key); v != nil {
				*f.target = *v
			}
		}
		if z := getTableInt(entry, "z_index"); z != nil {
			img.ZIndex = *z
		}
		if st := getTableString(entry, "scale_type"); st != nil {
			t, err := ParseScaleType(*st)
			if err != nil {
				return nil, fmt.Errorf("collage_images[%d]: %w", i, err)
			}
			img.ScaleType = t
		}
		images = append(images, img)
	}
	return images, nil
}

// getTableColor retrieves a color given as a string or a 32-bit integer.
// Returns nil, nil if the key doesn't exist.
func getTableColor(table *rt.Table, key string) (*ARGB, error) {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil, nil
	}
	if n, ok := val.TryInt(); ok {
		c := ARGB(uint32(n))
		return &c, nil
	}
	if s, ok := val.TryString(); ok {
		c, err := ParseARGB(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		return &c, nil
	}
	return nil, fmt.Errorf("invalid %s: expected a color string or integer", key)
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if b, ok := val.TryBool(); ok {
		return &b
	}
	return nil
}

// getTableString retrieves a string value from a Lua table.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if s, ok := val.TryString(); ok {
		return &s
	}
	return nil
}

// getTableFloat retrieves a number from a Lua table as float64.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryFloat(); ok {
		return &n
	}
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}
	return nil
}

// getTableInt retrieves a number from a Lua table as int, truncating floats.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}
	return nil
}
