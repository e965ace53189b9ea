package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/goaux/headline"
	"github.com/takumakei/sxplr-gen-go/generator"
)

//go:embed usage.md
var usage string

var version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator.Main(ctx, generator.Config{
		Use:     "sxplr-gen-go",
		Short:   headline.Get(usage),
		Long:    usage,
		Version: version,

		DefaultGenerator:  "datamodel-codegen",
		DefaultModelType:  "dataclasses.dataclass",
		DefaultOutputFile: "__init__.py",
	})
}
