package assemble

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Font is one face ready to be inlined.
type Font struct {
	Family string
	Weight int
	Italic bool
	Format string
	MIME   string
	Data   []byte
}

var fontFormats = map[string][2]string{
	".woff2": {"woff2", "font/woff2"},
	".woff":  {"woff", "font/woff"},
	".ttf":   {"truetype", "font/ttf"},
	".otf":   {"opentype", "font/otf"},
}

var weightNames = map[string]int{
	"thin":       100,
	"extralight": 200,
	"light":      300,
	"regular":    400,
	"normal":     400,
	"medium":     500,
	"semibold":   600,
	"bold":       700,
	"extrabold":  800,
	"black":      900,
}

// parseFontName reads Family-Weight[-italic].ext. ok is false for files
// that do not follow the pattern.
func parseFontName(name string) (f Font, ok bool) {
	ext := strings.ToLower(path.Ext(name))
	format, known := fontFormats[ext]
	if !known {
		return Font{}, false
	}
	parts := strings.Split(strings.TrimSuffix(name, path.Ext(name)), "-")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return Font{}, false
	}
	w, err := strconv.Atoi(parts[1])
	if err != nil {
		if w, known = weightNames[strings.ToLower(parts[1])]; !known {
			return Font{}, false
		}
	}
	if len(parts) == 3 {
		if !strings.EqualFold(parts[2], "italic") {
			return Font{}, false
		}
		f.Italic = true
	}
	f.Family, f.Weight, f.Format, f.MIME = parts[0], w, format[0], format[1]
	return f, true
}

// LoadFonts reads every font file at the top level of each filesystem.
// Later filesystems override faces with the same family, weight and style.
func LoadFonts(fsyss ...fs.FS) ([]Font, error) {
	byKey := map[string]Font{}
	for _, fsys := range fsyss {
		if fsys == nil {
			continue
		}
		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			return nil, fmt.Errorf("read font dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			f, ok := parseFontName(e.Name())
			if !ok {
				continue
			}
			if f.Data, err = fs.ReadFile(fsys, e.Name()); err != nil {
				return nil, fmt.Errorf("read font %s: %w", e.Name(), err)
			}
			byKey[fmt.Sprintf("%s/%d/%t", f.Family, f.Weight, f.Italic)] = f
		}
	}
	out := make([]Font, 0, len(byKey))
	for _, f := range byKey {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Family != b.Family {
			return a.Family < b.Family
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return !a.Italic && b.Italic
	})
	return out, nil
}

// FontFaceCSS renders base64 @font-face rules.
func FontFaceCSS(fonts []Font) string {
	var b strings.Builder
	for _, f := range fonts {
		style := "normal"
		if f.Italic {
			style = "italic"
		}
		fmt.Fprintf(&b, "@font-face { font-family: %q; font-weight: %d; font-style: %s; font-display: block; src: url(data:%s;base64,%s) format(%q); }\n",
			f.Family, f.Weight, style, f.MIME, base64.StdEncoding.EncodeToString(f.Data), f.Format)
	}
	return b.String()
}
