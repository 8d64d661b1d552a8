// Package pkg provides the core libraries for chartdir.
//
// # Overview
//
// chartdir builds XY and pie charts from small command scripts. A script
// creates a chart, gets back a numeric handle, and refines the chart through
// that handle until it renders an image. Handles live in a registry that
// reclaims charts left idle too long. The pkg directory is organized into
// these areas:
//
//  1. [chart] - The chart model (kinds, axes, layers, colors, palettes)
//  2. [command] - The command interpreter and script runner
//  3. [registry] - Numeric handles over memory, file and redis stores
//  4. [render] - Rendering charts to PNG, JPEG, GIF, BMP, SVG and PDF
//  5. [cache] - Rendered image cache (file, redis, null)
//  6. [config] - TOML configuration
//
// # Architecture
//
// The typical data flow through chartdir:
//
//	script / HTTP request / CLI args
//	         ↓
//	    [command] package (tokenize, dispatch, validate arguments)
//	         ↓
//	    [registry] package (resolve handle, touch access time)
//	         ↓
//	    [chart] package (mutate the model)
//	         ↓
//	    [render] package (model → go-chart → image bytes)
//
// # Quick Start
//
// Run a script against an in-memory registry:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/chartdir/pkg/command"
//	)
//
//	in := command.New(command.Options{OutputDir: "out"})
//	_, err := in.RunScript(context.Background(), `
//	c = create xy 400 300
//	layer $c create bar "3 5 7" sales
//	save $c sales.png
//	`, nil)
//
// Drive the interpreter one command at a time:
//
//	res, _ := in.Exec(ctx, []string{"create", "pie", "300", "300"})
//	id := res.String()
//	in.Exec(ctx, []string{"pie", id, "setdata", "1 2 3"})
//	png, _ := in.Exec(ctx, []string{"image", id, "png"})
//
// # Main Packages
//
// [chart] - Serializable chart model. Colors follow the 0xAARRGGBB scheme
// with reserved palette references. XY charts carry up to five layers of
// line, bar, area or trend data.
//
// [command] - The interpreter. Every command is a function over parsed
// words, with errors carrying codes from [errors].
//
// [registry] - Handle allocation, idle tracking and the GC sweep. The file
// store lets separate CLI invocations share handles; the redis store lets
// server replicas share them.
//
// [render] - Turns a chart into bytes via go-chart. PDF goes through
// rsvg-convert.
//
// [observability] - Hooks for command, render, registry, cache and HTTP
// events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/command/...            # Specific package
//	go test -run Example                 # Examples only
//
// [chart]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/chart
// [command]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/command
// [registry]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/registry
// [render]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/chartdir/pkg/observability
package pkg
