package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/betbot/orderly/pkg/secretstore"
)

// 把 .env 中的 orderly key 凭证导入加密的 badger 库，之后可以删掉 .env 里的私钥
func main() {
	var (
		inPath    = flag.String("in", ".env", "input .env file path")
		dbPath    = flag.String("badger", getenv("SECRET_DB", "data/secrets.badger"), "badger secrets db path")
		secretKey = flag.String("secret-key", getenv("SECRET_KEY", ""), "badger encryption key (32 bytes base64/hex)")
		prefix    = flag.String("prefix", "orderly/", "key prefix inside badger")
	)
	flag.Parse()

	keyBytes, err := secretstore.ParseKey(*secretKey)
	if err != nil {
		fatal(err)
	}
	if keyBytes == nil {
		fatal(errors.New("secret key is required: set SECRET_KEY or pass -secret-key"))
	}

	cred, err := secretstore.NewDotenvStore(*inPath).Load()
	if err != nil {
		fatal(fmt.Errorf("读取 %s 失败: %w", *inPath, err))
	}

	ss, err := secretstore.Open(secretstore.OpenOptions{
		Path:          *dbPath,
		EncryptionKey: keyBytes,
	})
	if err != nil {
		fatal(err)
	}
	defer ss.Close()

	if err := secretstore.NewBadgerStore(ss, *prefix).Save(cred); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "已导入 account %s 的 orderly key 到 badger：%s（前缀 %s）\n", cred.AccountID, *dbPath, *prefix)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
