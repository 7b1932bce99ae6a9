package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dep2p/go-diddht/pkg/did"
)

// ============================================================================
//                              create
// ============================================================================

var createCommand = &cli.Command{
	Name:  "create",
	Usage: "create a document for a keystore identity and print it as JSON",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key",
			Usage: "identifier of a keystore key, a new Ed25519 key is generated when empty",
		},
		&cli.StringSliceFlag{
			Name:  "service",
			Usage: "service as id,type,endpoint[,endpoint...] (repeatable)",
		},
		&cli.BoolFlag{
			Name:  "publish",
			Usage: "publish the document after creating it",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		services, err := parseServices(cctx.StringSlice("service"))
		if err != nil {
			return err
		}
		ks, err := openKeystore(cctx, cfg)
		if err != nil {
			return err
		}

		opts := did.CreateOptions{Services: services}
		if id := cctx.String("key"); id != "" {
			priv, err := loadIdentity(ks, id)
			if err != nil {
				return err
			}
			opts.KeySet = &did.KeySet{IdentityKey: &did.KeyPair{PrivateKey: priv}}
		}

		doc, keys, err := did.Create(opts)
		if err != nil {
			return err
		}
		if cctx.String("key") == "" {
			if _, err := storeIdentity(ks, keys.IdentityKey.PrivateKey); err != nil {
				return err
			}
		}

		if cctx.Bool("publish") {
			client, err := openClient(cctx)
			if err != nil {
				return err
			}
			defer client.Close()
			res, err := client.Publish(cctx.Context, doc, keys.IdentityKey.PrivateKey, 0)
			if err != nil {
				return err
			}
			log.Info("文档已发布", "id", res.ID, "seq", res.Seq, "size", res.Size)
		}
		return writeJSON(cctx.App.Writer, doc)
	},
}

// parseServices 解析 id,type,endpoint[,endpoint...]
func parseServices(values []string) ([]did.Service, error) {
	services := make([]did.Service, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ",")
		if len(parts) < 3 {
			return nil, fmt.Errorf("bad service %q: want id,type,endpoint[,endpoint...]", v)
		}
		services = append(services, did.Service{
			ID:              parts[0],
			Type:            parts[1],
			ServiceEndpoint: did.Endpoints(parts[2:]),
		})
	}
	return services, nil
}

// ============================================================================
//                              publish / resolve
// ============================================================================

var publishCommand = &cli.Command{
	Name:      "publish",
	Usage:     "sign and publish a JSON document with its keystore identity",
	ArgsUsage: "<document.json>",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "seq",
			Usage: "sequence number, allocated from the seq source when 0",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.Exit("publish: expected one document file", 2)
		}
		doc, err := readDocument(cctx.Args().First())
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		ks, err := openKeystore(cctx, cfg)
		if err != nil {
			return err
		}
		priv, err := loadIdentity(ks, doc.ID)
		if err != nil {
			return err
		}

		client, err := openClient(cctx)
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := client.Publish(cctx.Context, doc, priv, cctx.Uint64("seq"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "%s seq=%d size=%d key=%s\n", res.ID, res.Seq, res.Size, hex.EncodeToString(res.Key))
		return nil
	},
}

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "resolve a did:dht identifier and print the document",
	ArgsUsage: "<did>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.Exit("resolve: expected one identifier", 2)
		}
		client, err := openClient(cctx)
		if err != nil {
			return err
		}
		defer client.Close()

		doc, err := client.Resolve(cctx.Context, cctx.Args().First())
		if err != nil {
			return err
		}
		return writeJSON(cctx.App.Writer, doc)
	},
}

// ============================================================================
//                              encode / decode
// ============================================================================

var encodeCommand = &cli.Command{
	Name:      "encode",
	Usage:     "encode a JSON document as a DNS packet",
	ArgsUsage: "<document.json>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "write the raw packet to a file instead of hex to stdout",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.Exit("encode: expected one document file", 2)
		}
		doc, err := readDocument(cctx.Args().First())
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		codec, err := cfg.Codec.NewCodec()
		if err != nil {
			return err
		}
		packet, err := codec.Encode(doc)
		if err != nil {
			return err
		}
		if out := cctx.String("out"); out != "" {
			return os.WriteFile(out, packet, 0o600)
		}
		fmt.Fprintln(cctx.App.Writer, hex.EncodeToString(packet))
		return nil
	},
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "decode a DNS packet for an identifier and print the document",
	ArgsUsage: "<did>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "in",
			Usage: "raw packet file",
		},
		&cli.StringFlag{
			Name:  "hex",
			Usage: "hex-encoded packet",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.Exit("decode: expected one identifier", 2)
		}
		var packet []byte
		var err error
		switch {
		case cctx.String("in") != "":
			packet, err = os.ReadFile(cctx.String("in")) //nolint:gosec // G304: 用户指定的报文文件是预期行为
		case cctx.String("hex") != "":
			packet, err = hex.DecodeString(strings.TrimSpace(cctx.String("hex")))
		default:
			return cli.Exit("decode: one of --in or --hex is required", 2)
		}
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		codec, err := cfg.Codec.NewCodec()
		if err != nil {
			return err
		}
		doc, err := codec.Decode(cctx.Args().First(), packet)
		if err != nil {
			return err
		}
		return writeJSON(cctx.App.Writer, doc)
	},
}

// ============================================================================
//                              辅助
// ============================================================================

// readDocument 读取 JSON 文档，"-" 表示标准输入
func readDocument(path string) (*did.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // G304: 用户指定的文档路径是预期行为
	}
	if err != nil {
		return nil, err
	}
	var doc did.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
