// Package pkg provides the libraries behind mosaic, a mosaic (marimekko)
// chart layout calculator.
//
// # Overview
//
// A mosaic chart shows two categorical dimensions at once. Each category is a
// column whose width is its share of the category total; each column is split
// vertically into subcategory shares. The pkg directory is organized as:
//
//  1. [mosaic] - Chart model and layout computation (the core)
//  2. [dataset] - Chart definitions in JSON, YAML and TOML, plus built-ins
//  3. [render] - SVG, PNG, PDF and JSON sinks, styles and the category tree
//  4. [pipeline] - Orchestration (load → layout → render) with caching
//  5. [cache], [store] - Byte caches (file, memory, Redis) and chart
//     persistence (memory, MongoDB)
//  6. [server] - HTTP API over stored charts
//
// # Architecture
//
// The typical data flow:
//
//	Dataset file / URL / built-in
//	         ↓
//	    [dataset] package (parse + validate a Definition)
//	         ↓
//	    [mosaic] package (build a Chart, compute its Layout)
//	         ↓
//	    [render/sink] package (draw the Layout)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	c := mosaic.New(mosaic.WithTitle("Controlled Group Testing"))
//	tired := c.AddSubCategory("rgb(200,0,0)")
//	fresh := c.AddSubCategory("rgb(0,180,0)")
//	c.AddCategory("With caffeine").SetValue(48).
//	    SetSubCategoryValue(tired, 25).
//	    SetSubCategoryValue(fresh, 75)
//	if err := c.Err(); err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(c.Layout(), sink.WithLegend())
//
// Every chart operation recomputes the layout, so c.Layout() is always
// current.
//
// # Supporting Packages
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hook registry for pipeline, cache and server events.
//
// [httputil] - Cached, retrying fetcher for remote datasets.
//
// [colors], [fonts] - Colour parsing and the embedded Go fonts.
//
// [buildinfo] - Version information injected at build time.
package pkg
