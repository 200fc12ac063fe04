// Command hashpass prints the bcrypt hash to store in usuarios.senha.
//
// Usage:
//
//	hashpass            # prompts for the password without echo
//	hashpass -p secret  # takes it from the flag (ends up in shell history)
//	echo secret | hashpass
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"imovel-backend/internal/services"

	"golang.org/x/term"
)

func main() {
	password := flag.String("p", "", "password to hash")
	flag.Parse()

	pw := *password
	if pw == "" {
		var err error
		pw, err = readPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "read password:", err)
			os.Exit(1)
		}
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "empty password")
		os.Exit(2)
	}

	hash, err := services.HashPassword(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Senha: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
