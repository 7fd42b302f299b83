package main

import (
	"log"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/luckyturtle/reed-solomon-erasure/reedsolomon"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "rscode"
	myApp.Usage = "Reed-Solomon erasure coding over a directory of shard files"
	myApp.Version = VERSION
	myApp.Commands = []cli.Command{
		{
			Name:      "encode",
			Usage:     "split a file into data+parity shards",
			ArgsUsage: "<file> <outdir>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "ds", Value: 10, Usage: "number of data shards"},
				cli.IntFlag{Name: "ps", Value: 3, Usage: "number of parity shards"},
				cli.BoolFlag{Name: "compress", Usage: "snappy-compress the file before splitting"},
				cli.StringFlag{Name: "c", Usage: "config from json file, which will override command line arguments"},
				cli.StringFlag{Name: "log", Usage: "redirect log output to this file"},
			},
			Action: encodeAction,
		},
		{
			Name:      "verify",
			Usage:     "check that the shards in a directory still agree with the parity",
			ArgsUsage: "<dir>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "ds", Value: 10, Usage: "number of data shards"},
				cli.IntFlag{Name: "ps", Value: 3, Usage: "number of parity shards"},
				cli.StringFlag{Name: "log", Usage: "redirect log output to this file"},
			},
			Action: verifyAction,
		},
		{
			Name:      "reconstruct",
			Usage:     "rebuild any missing shard files in a directory and reassemble the original file",
			ArgsUsage: "<dir> <outfile>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "ds", Value: 10, Usage: "number of data shards"},
				cli.IntFlag{Name: "ps", Value: 3, Usage: "number of parity shards"},
				cli.BoolFlag{Name: "compress", Usage: "the original file was snappy-compressed before splitting"},
				cli.StringFlag{Name: "log", Usage: "redirect log output to this file"},
			},
			Action: reconstructAction,
		},
	}

	myApp.Run(os.Args)
}

func applyCommon(c *cli.Context, cfg *Config) {
	cfg.DataShards = c.Int("ds")
	cfg.ParityShards = c.Int("ps")
	cfg.Compress = c.Bool("compress")
	cfg.Log = c.String("log")

	if c.String("c") != "" {
		err := parseJSONConfig(cfg, c.String("c"))
		checkError(err)
	}

	if cfg.Log != "" {
		f, err := os.OpenFile(cfg.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		checkError(err)
		log.SetOutput(f)
	}
}

func encodeAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: rscode encode [flags] <file> <outdir>", 1)
	}
	cfg := Config{}
	applyCommon(c, &cfg)

	inFile, outDir := c.Args().Get(0), c.Args().Get(1)

	data, err := os.ReadFile(inFile)
	checkError(err)

	if cfg.Compress {
		data = snappy.Encode(nil, data)
	}

	codec, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	checkError(err)

	shards, err := splitData(data, cfg.DataShards)
	checkError(err)

	full := make([][]byte, codec.TotalShards())
	copy(full, shards)
	perShard := len(shards[0])
	for i := cfg.DataShards; i < codec.TotalShards(); i++ {
		full[i] = make([]byte, perShard)
	}

	checkError(codec.Encode(full))
	checkError(writeShards(outDir, full))
	checkError(writeMeta(outDir, len(data)))

	log.Println("encoded", inFile, "into", codec.TotalShards(), "shards under", outDir)
	return nil
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: rscode verify [flags] <dir>", 1)
	}
	cfg := Config{}
	applyCommon(c, &cfg)

	dir := c.Args().Get(0)

	codec, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	checkError(err)

	shards, err := readShards(dir, codec.TotalShards())
	checkError(err)

	for i, s := range shards {
		if s == nil {
			log.Printf("shard %d: missing\n", i)
		}
	}

	ok, err := codec.Verify(shards)
	if err != nil {
		return errors.Wrap(err, "verify")
	}
	if ok {
		log.Println("ok: all present shards are consistent with the parity")
	} else {
		log.Println("FAILED: parity mismatch detected")
		return cli.NewExitError("parity mismatch", 1)
	}
	return nil
}

func reconstructAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: rscode reconstruct [flags] <dir> <outfile>", 1)
	}
	cfg := Config{}
	applyCommon(c, &cfg)

	dir, outFile := c.Args().Get(0), c.Args().Get(1)

	codec, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	checkError(err)

	shards, err := readShards(dir, codec.TotalShards())
	checkError(err)

	missing := 0
	for _, s := range shards {
		if s == nil {
			missing++
		}
	}
	if missing > 0 {
		checkError(codec.Reconstruct(shards))
		checkError(writeShards(dir, shards))
		log.Println("reconstructed", missing, "missing shard(s)")
	} else {
		log.Println("no missing shards, nothing to reconstruct")
	}

	meta, err := readMeta(dir)
	checkError(err)
	out, err := joinData(shards, cfg.DataShards, meta.Size)
	checkError(err)

	if cfg.Compress {
		out, err = snappy.Decode(nil, out)
		checkError(err)
	}

	checkError(os.WriteFile(outFile, out, 0644))
	log.Println("reassembled", outFile)
	return nil
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
