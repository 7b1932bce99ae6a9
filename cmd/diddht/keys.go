package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              密钥库
// ============================================================================

// openKeystore 打开配置指定的文件密钥库
func openKeystore(cctx *cli.Context, cfg *config.Config) (*crypto.FSKeystore, error) {
	return crypto.NewFSKeystore(keystoreDir(cfg), []byte(cctx.String("password")))
}

// keyID 密钥库中的条目名为标识符去掉方法前缀
func keyID(id string) string {
	return strings.TrimPrefix(id, did.MethodPrefix)
}

// loadIdentity 从密钥库读取标识符对应的身份私钥
func loadIdentity(ks crypto.Keystore, id string) (crypto.PrivateKey, error) {
	priv, err := ks.Get(keyID(id))
	if errors.Is(err, crypto.ErrKeyNotFound) {
		return nil, fmt.Errorf("no identity key for %s in keystore", id)
	}
	return priv, err
}

// storeIdentity 写入身份私钥并返回标识符
func storeIdentity(ks crypto.Keystore, priv crypto.PrivateKey) (string, error) {
	id, err := did.Identifier(priv.GetPublic())
	if err != nil {
		return "", err
	}
	if err := ks.Put(keyID(id), priv); err != nil {
		return "", err
	}
	return id, nil
}

// ============================================================================
//                              keygen / keys
// ============================================================================

var keygenCommand = &cli.Command{
	Name:  "keygen",
	Usage: "generate an identity key and print its did:dht identifier",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Usage: "key type (ed25519/secp256k1), default from config",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		name := cctx.String("type")
		if name == "" {
			name = cfg.Identity.KeyType
		}
		kt, err := crypto.ParseKeyType(name)
		if err != nil {
			return err
		}

		priv, _, err := crypto.GenerateKeyPair(kt)
		if err != nil {
			return err
		}
		ks, err := openKeystore(cctx, cfg)
		if err != nil {
			return err
		}
		id, err := storeIdentity(ks, priv)
		if err != nil {
			return err
		}
		log.Info("身份密钥已生成", "id", id, "type", kt)
		fmt.Fprintln(cctx.App.Writer, id)
		return nil
	},
}

var keysCommand = &cli.Command{
	Name:  "keys",
	Usage: "list identifiers with a key in the keystore",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		ks, err := openKeystore(cctx, cfg)
		if err != nil {
			return err
		}
		ids, err := ks.List()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cctx.App.Writer, did.MethodPrefix+id)
		}
		return nil
	},
}
