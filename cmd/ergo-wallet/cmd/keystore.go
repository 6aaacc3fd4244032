package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/ergo-wallet/internal/address"
	"github.com/AlexZinkM/ergo-wallet/internal/config"
	"github.com/AlexZinkM/ergo-wallet/internal/crypto"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "Manage the encrypted wallet file",
}

var (
	keystoreFile    string
	keystoreAddress string
	keystoreNetwork string
)

var keystoreCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Encrypt a wallet secret into a new .cwt file",
	Long: `Reads the wallet secret and a password from the terminal and writes them,
encrypted, to a new .cwt keystore. The address is stored in clear text so the
wallet can be identified without unlocking it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := address.ParseNetwork(keystoreNetwork)
		if err != nil {
			return err
		}
		if err := address.Validate(keystoreAddress, network); err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}

		seed, err := config.ReadSecret("Enter wallet secret: ")
		if err != nil {
			return err
		}
		secret := &model.WalletSecret{Seed: seed, CreatedAt: time.Now().Format(time.RFC3339)}
		defer secret.Wipe()

		password, err := readNewPassword()
		if err != nil {
			return err
		}
		defer clear(password)

		ks := crypto.NewKeystore(keystoreFile)
		if err := ks.Create(keystoreNetwork, keystoreAddress, secret, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Keystore written to %s\n", keystoreFile)
		return nil
	},
}

func readNewPassword() ([]byte, error) {
	password, err := config.ReadSecret("Enter new password: ")
	if err != nil {
		return nil, err
	}
	again, err := config.ReadSecret("Repeat password: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(again)
	if !bytes.Equal(password, again) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}

func init() {
	keystoreCreateCmd.Flags().StringVar(&keystoreFile, "file", os.Getenv("WALLET_FILE_PATH"), "keystore path (.cwt)")
	keystoreCreateCmd.Flags().StringVar(&keystoreAddress, "address", "", "wallet address")
	keystoreCreateCmd.Flags().StringVar(&keystoreNetwork, "network", "mainnet", "mainnet or testnet")
	keystoreCreateCmd.MarkFlagRequired("address")

	keystoreCmd.AddCommand(keystoreCreateCmd)
	rootCmd.AddCommand(keystoreCmd)
}
