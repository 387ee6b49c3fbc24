package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"go-recruiting-platform/pkg/password"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print the bcrypt digest of a password read from stdin",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

var hashCost int

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 12, "bcrypt cost")
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("password is required on stdin")
	}
	plaintext := strings.TrimRight(line, "\r\n")
	if plaintext == "" {
		return errors.New("password is required on stdin")
	}

	digest, err := password.NewBcryptHasher(hashCost).Hash(plaintext)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), digest)
	return nil
}
