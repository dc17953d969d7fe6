package language

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const recordSeparator = "%%"

type field struct {
	name, value string
}

type record []field

func (rec record) get(name string) string {
	for _, f := range rec {
		if f.name == name {
			return f.value
		}
	}
	return ""
}

func (rec record) all(name string) []string {
	var out []string
	for _, f := range rec {
		if f.name == name {
			out = append(out, f.value)
		}
	}
	return out
}

// Parse reads the IANA language subtag registry text format.
func Parse(r io.Reader) (*Registry, error) {
	reg := newRegistry()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		rec    record
		lineNo int
	)
	flush := func() {
		if date := rec.get("File-Date"); date != "" && rec.get("Type") == "" {
			reg.fileDate = date
		} else {
			reg.add(rec)
		}
		rec = nil
	}
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.TrimSpace(line) == recordSeparator:
			flush()
		case strings.TrimSpace(line) == "":
		case line[0] == ' ' || line[0] == '\t':
			if len(rec) == 0 {
				return nil, fmt.Errorf("line %d: continuation without a field", lineNo)
			}
			rec[len(rec)-1].value += " " + strings.TrimSpace(line)
		default:
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("line %d: malformed field %q", lineNo, line)
			}
			rec = append(rec, field{name: strings.TrimSpace(name), value: strings.TrimSpace(value)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read language registry: %w", err)
	}
	flush()
	return reg, nil
}

func (reg *Registry) add(rec record) {
	if len(rec) == 0 {
		return
	}
	subtag := strings.ToLower(rec.get("Subtag"))
	tag := rec.get("Tag")
	isSign := false
	for _, d := range rec.all("Description") {
		if strings.Contains(strings.ToLower(d), "sign") {
			isSign = true
			break
		}
	}

	switch strings.ToLower(rec.get("Type")) {
	case "language", "extlang":
		if subtag == "" {
			return
		}
		if start, end, ok := strings.Cut(subtag, ".."); ok && rec.get("Scope") == "private-use" {
			if len(start) == len(end) {
				reg.languageRanges = append(reg.languageRanges, subtagRange{start: start, end: end})
			}
			return
		}
		reg.known[subtag] = true
		if isSign {
			reg.sign[subtag] = true
		}
	case "variant":
		if subtag == "" {
			return
		}
		reg.variants[subtag] = true
		for _, prefix := range rec.all("Prefix") {
			prefix = strings.ToLower(prefix)
			reg.known[prefix] = true
			reg.known[prefix+"-"+subtag] = true
		}
	case "redundant", "grandfathered":
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		reg.redundant[key] = redundantTag{tag: tag, preferred: rec.get("Preferred-Value")}
		if isSign {
			reg.sign[key] = true
		}
	case "region":
		if subtag == "" {
			return
		}
		if start, end, ok := strings.Cut(subtag, ".."); ok {
			if len(start) == len(end) {
				reg.regionRanges = append(reg.regionRanges, subtagRange{start: start, end: end})
			}
			return
		}
		reg.regions[subtag] = true
	case "script":
		if subtag != "" && !strings.Contains(subtag, "..") {
			reg.scripts[subtag] = true
		}
	}
}
