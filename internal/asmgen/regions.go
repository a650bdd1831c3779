package asmgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/datasource"
)

// openRegion is a region started by a region start directive.
type openRegion struct {
	name   string
	offset int
	start  int
}

// collectRegions returns the regions of the data source together with the
// regions of region directives, ordered by descending priority. All
// addresses are canonical.
func (g *Generator) collectRegions() ([]datasource.Region, error) {
	var regions []datasource.Region
	names := set.New[string]()

	for _, region := range g.src.Regions() {
		region.Start = g.src.Canonical(region.Start)
		region.End = g.src.Canonical(region.End)
		if region.SeparateFile {
			if err := g.checkRegionName(region); err != nil {
				return nil, err
			}
			names.Add(region.Name)
		}
		regions = append(regions, region)
	}

	directives, err := g.directiveRegions()
	if err != nil {
		return nil, err
	}
	for _, region := range directives {
		if err := g.checkRegionName(region); err != nil {
			return nil, err
		}
		if names.Contains(region.Name) {
			return nil, &StructuralError{
				Offset: g.src.ToOffset(region.Start),
				Msg:    fmt.Sprintf("region %q is defined more than once", region.Name),
			}
		}
		names.Add(region.Name)
		regions = append(regions, region)
		g.logger.Debug("Region from directives",
			log.String("region", region.Name),
			log.Hex("start", region.Start),
			log.Hex("end", region.End))
	}

	slices.SortStableFunc(regions, func(a, b datasource.Region) int {
		return b.Priority - a.Priority
	})
	return regions, nil
}

// checkRegionName rejects region names that do not name a file inside of
// the output directory.
func (g *Generator) checkRegionName(region datasource.Region) error {
	name := region.Name
	if name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..") {
		return nil
	}
	return &StructuralError{
		Offset: g.src.ToOffset(region.Start),
		Msg:    fmt.Sprintf("region name %q is not a valid file name", name),
	}
}

// directiveRegions synthesizes separate-file regions from region start and
// end directives in the comments of line starts. The line that carries the
// end directive is the last line of its region.
func (g *Generator) directiveRegions() ([]datasource.Region, error) {
	var regions []datasource.Region
	var open *openRegion

	romSize := g.src.RomSize()
	for offset := 0; offset < romSize; offset += datasource.LineByteLength(g.src, offset, g.opts.DataPerLine) {
		address := g.src.ToNative(offset)
		directives, name := datasource.ParseDirectives(g.src.Comment(address))

		if directives&datasource.RegionStart != 0 {
			switch {
			case name == "":
				return nil, &StructuralError{Offset: offset, Msg: "region start without a region name"}
			case open != nil:
				return nil, &StructuralError{
					Offset: offset,
					Msg:    fmt.Sprintf("region %q starts inside of region %q", name, open.name),
				}
			}
			open = &openRegion{name: name, offset: offset, start: address}
			name = ""
		}

		if directives&datasource.RegionEnd == 0 {
			continue
		}
		if open == nil {
			return nil, &StructuralError{Offset: offset, Msg: "region end without a region start"}
		}
		if name != "" && name != open.name {
			return nil, &StructuralError{
				Offset: offset,
				Msg:    fmt.Sprintf("region end %q does not match the open region %q", name, open.name),
			}
		}

		length := datasource.LineByteLength(g.src, offset, g.opts.DataPerLine)
		regions = append(regions, datasource.Region{
			Name:         open.name,
			Start:        open.start,
			End:          g.src.ToNative(offset + length - 1),
			SeparateFile: true,
		})
		open = nil
	}

	if open != nil {
		return nil, &StructuralError{
			Offset: open.offset,
			Msg:    fmt.Sprintf("region %q is not terminated", open.name),
		}
	}
	return regions, nil
}
