// Command phylodm computes a phylogenetic distance matrix from a Newick
// tree and writes it to a CBOR store.
//
// Usage:
//
//	phylodm <newick-path> <method> <output-path>
//
// method is "pd" for patristic distance or "node" for node distance.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/soniakeys/phylodm"
)

var version = "dev"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	With().Timestamp().Logger()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("phylodm", pflag.ContinueOnError)
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	verbose := flags.BoolP("verbose", "V", false, "enable debug logging")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: phylodm [flags] <newick-path> <method> <output-path>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Println("phylodm", version)
		return 0
	}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	rest := flags.Args()
	if len(rest) != 3 {
		flags.Usage()
		return 2
	}
	newickPath, methodTag, outPath := rest[0], rest[1], rest[2]

	method, err := phylodm.ParseMethod(methodTag)
	if err != nil {
		log.Error().Err(err).Str("method", methodTag).Msg("invalid method")
		return 1
	}

	log.Debug().Str("path", newickPath).Msg("reading tree")
	data, err := os.ReadFile(newickPath)
	if err != nil {
		log.Error().Err(err).Str("path", newickPath).Msg("read newick file")
		return 1
	}

	tree, err := phylodm.ParseNewick(string(data))
	if err != nil {
		log.Error().Err(err).Msg("parse newick")
		return 1
	}

	log.Debug().Int("nodes", tree.NumNodes()).Msg("building distance matrix")
	pdm, err := phylodm.NewBuilder().Build(tree, method)
	if err != nil {
		log.Error().Err(err).Msg("build PDM")
		return 1
	}
	log.Info().
		Int("taxa", len(pdm.Indices())).
		Str("method", method.String()).
		Str("elem_kind", pdm.ElemKind()).
		Msg("distance matrix built")

	if err := phylodm.Save(pdm, outPath); err != nil {
		log.Error().Err(err).Str("path", outPath).Msg("save PDM store")
		return 1
	}
	log.Info().Str("path", outPath).Msg("saved")
	return 0
}
