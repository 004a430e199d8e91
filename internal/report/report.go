// Package report flattens an analyzed binary into serializable report
// structs: one record per analysis product, assembled per architecture.
// The CLI renders these as text or marshals them as JSON.
package report

import (
	"fmt"
	"sort"

	"github.com/appsworld/moscope"
)

// Options selects which analysis products a report carries.
type Options struct {
	Header       bool
	LoadCommands bool
	Segments     bool
	Dylibs       bool
	Rpaths       bool
	Symbols      bool
	Strings      bool

	MinStrLen  int    // minimum extracted string length, default 4
	StrPattern string // optional regexp filter for strings
}

// A Report is the top-level analysis result for one input file.
type Report struct {
	IsFat         bool           `json:"is_fat"`
	Architectures []Architecture `json:"architectures"`
}

// An Architecture is the per-slice report. Error is set, and everything
// else empty, for fat members that failed to decode.
type Architecture struct {
	CPUType      string        `json:"cpu_type"`
	CPUSubtype   string        `json:"cpu_subtype"`
	Offset       uint64        `json:"offset"`
	Error        string        `json:"error,omitempty"`
	Header       *Header       `json:"header,omitempty"`
	LoadCommands []LoadCommand `json:"load_commands,omitempty"`
	Segments     []Segment     `json:"segments,omitempty"`
	Dylibs       []Dylib       `json:"dylibs,omitempty"`
	Rpaths       []string      `json:"rpaths,omitempty"`
	Symbols      []Symbol      `json:"symbols,omitempty"`
	Strings      []String      `json:"strings,omitempty"`
}

type Header struct {
	Magic    string   `json:"magic"`
	FileType string   `json:"file_type"`
	NCmds    uint32   `json:"ncmds"`
	SizeCmds uint32   `json:"sizeofcmds"`
	Flags    []string `json:"flags"`
}

type LoadCommand struct {
	Cmd    string `json:"cmd"`
	Size   uint32 `json:"cmdsize"`
	Offset uint64 `json:"offset"`
}

type Segment struct {
	Name     string    `json:"name"`
	VMAddr   uint64    `json:"vmaddr"`
	VMSize   uint64    `json:"vmsize"`
	Offset   uint64    `json:"fileoff"`
	Filesz   uint64    `json:"filesize"`
	Prot     string    `json:"prot"`
	MaxProt  string    `json:"maxprot"`
	Sections []Section `json:"sections,omitempty"`
}

type Section struct {
	Name string `json:"name"`
	Addr uint64 `json:"addr"`
	Size uint64 `json:"size"`
	Kind string `json:"kind"`
}

type Dylib struct {
	Kind           string `json:"kind"`
	Path           string `json:"path"`
	CurrentVersion string `json:"current_version"`
	CompatVersion  string `json:"compat_version"`
}

type Symbol struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Value    uint64 `json:"value"`
	External bool   `json:"external"`
	Debug    bool   `json:"debug,omitempty"`
	Section  string `json:"section,omitempty"`
	Stub     uint64 `json:"stub_addr,omitempty"`
}

type String struct {
	Value   string `json:"value"`
	Section string `json:"section"`
}

// Build assembles a report from an analyzed file.
func Build(f *moscope.File, opts Options) (*Report, error) {
	if opts.MinStrLen < 1 {
		opts.MinStrLen = 4
	}
	r := &Report{IsFat: f.Kind.IsFat()}
	for _, s := range f.Slices {
		arch := Architecture{
			CPUType:    s.CPU.String(),
			CPUSubtype: s.SubCPU.String(s.CPU),
			Offset:     s.Arch.Offset,
		}
		if s.Err != nil {
			arch.Error = s.Err.Error()
			r.Architectures = append(r.Architectures, arch)
			continue
		}
		if opts.Header {
			arch.Header = &Header{
				Magic:    s.Header.Magic.String(),
				FileType: s.Header.Type.String(),
				NCmds:    s.Header.NCommands,
				SizeCmds: s.Header.SizeCommands,
				Flags:    s.Header.Flags.List(),
			}
		}
		if opts.LoadCommands {
			for _, lc := range s.Loads {
				arch.LoadCommands = append(arch.LoadCommands, LoadCommand{
					Cmd:    lc.Cmd.String(),
					Size:   lc.Size,
					Offset: lc.Offset,
				})
			}
		}
		if opts.Segments {
			for _, seg := range s.Segments {
				sr := Segment{
					Name:    seg.Name.String(),
					VMAddr:  seg.Addr,
					VMSize:  seg.Memsz,
					Offset:  seg.Offset,
					Filesz:  seg.Filesz,
					Prot:    seg.Prot.String(),
					MaxProt: seg.Maxprot.String(),
				}
				for _, sec := range seg.Sections {
					sr.Sections = append(sr.Sections, Section{
						Name: fmt.Sprintf("%s.%s", sec.Seg, sec.Name),
						Addr: sec.Addr,
						Size: sec.Size,
						Kind: sec.Kind.String(),
					})
				}
				arch.Segments = append(arch.Segments, sr)
			}
		}
		if opts.Dylibs {
			for _, d := range s.Dylibs {
				arch.Dylibs = append(arch.Dylibs, Dylib{
					Kind:           d.Kind.String(),
					Path:           d.Path,
					CurrentVersion: d.CurrentVersion.String(),
					CompatVersion:  d.CompatVersion.String(),
				})
			}
		}
		if opts.Rpaths {
			for _, rp := range s.Rpaths {
				arch.Rpaths = append(arch.Rpaths, rp.Path)
			}
		}
		if opts.Symbols && s.Symtab != nil {
			for _, sym := range s.Symtab.Syms {
				sr := Symbol{
					Name:     sym.Name,
					Kind:     sym.Kind.String(),
					Value:    sym.Value,
					External: sym.External,
					Debug:    sym.Debug,
				}
				if sym.SectName != "" {
					sr.Section = fmt.Sprintf("%s.%s", sym.SegName, sym.SectName)
				}
				if sym.HasIndirect {
					sr.Stub = sym.IndirectAddr
				}
				arch.Symbols = append(arch.Symbols, sr)
			}
			sort.SliceStable(arch.Symbols, func(i, j int) bool {
				if arch.Symbols[i].Value != arch.Symbols[j].Value {
					return arch.Symbols[i].Value < arch.Symbols[j].Value
				}
				return arch.Symbols[i].Name < arch.Symbols[j].Name
			})
		}
		if opts.Strings {
			var (
				strs []moscope.ExtractedString
				err  error
			)
			if opts.StrPattern != "" {
				strs, err = s.FilteredStrings(opts.StrPattern)
				if err != nil {
					return nil, err
				}
			} else {
				strs = s.Strings(opts.MinStrLen)
			}
			for _, es := range strs {
				arch.Strings = append(arch.Strings, String{
					Value:   es.Value,
					Section: fmt.Sprintf("%s.%s", es.SegName, es.SectName),
				})
			}
		}
		r.Architectures = append(r.Architectures, arch)
	}
	return r, nil
}
