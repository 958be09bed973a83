// Command hashpw prints the wire-format hash of a password, for seeding
// accounts or rotating credentials by hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/avolokitin/authgate/internal/crypto"
)

func main() {
	password := flag.String("password", "", "password to hash (read from stdin when empty)")
	flag.Parse()

	pw := *password
	if pw == "" {
		r := bufio.NewReader(os.Stdin)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "hashpw: read stdin:", err)
			os.Exit(1)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "hashpw: empty password")
		os.Exit(1)
	}

	stored, err := crypto.HashPassword(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(stored)
}
