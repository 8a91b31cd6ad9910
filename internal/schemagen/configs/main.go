package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/tagrss/api/v1beta1/configs"
	"github.com/macropower/tagrss/pkg/schema"
)

var (
	outFile = flag.String("o", "configs.v1beta1.json", "Output file for the generated schema")
	root    = flag.String("root", "../../..", "Module root, relative to the working directory")
)

func main() {
	flag.Parse()

	gen := schema.NewGenerator(configs.New(),
		schema.WithID("https://raw.githubusercontent.com/macropower/tagrss/refs/heads/main/api/v1beta1/configs/configs.v1beta1.json"),
		schema.WithComments(*root,
			"github.com/macropower/tagrss/api/v1beta1",
			"github.com/macropower/tagrss/api/v1beta1/configs",
		),
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
