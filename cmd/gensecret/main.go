package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// HS256 needs at least 32 bytes key
const defaultKeyBytesLen = 32

func main() {
	var size int
	pflag.IntVarP(&size, "bytes", "b", defaultKeyBytesLen, "Secret key length in bytes")
	pflag.Parse()

	if size < defaultKeyBytesLen {
		fmt.Fprintf(os.Stderr, "secret key must be at least %d bytes long\n", defaultKeyBytesLen)
		os.Exit(1)
	}

	b := make([]byte, size)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
