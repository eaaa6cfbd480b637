// Command keygen prints a fresh ENCRYPTION_KEY suitable for the PII
// codec: 32 random bytes, hex encoded.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

func main() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		fmt.Fprintln(os.Stderr, "generate key:", err)
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(key))
}
