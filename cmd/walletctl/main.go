package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/app"
	"github.com/AlexZinkM/multiwallet/internal/common"
	"github.com/AlexZinkM/multiwallet/internal/config"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/spf13/cobra"
)

var (
	chainName   string
	index       uint32
	words       int
	showQR      bool
	label       string
	imported    bool
	broadcast   bool
	transfer    model.TransferParams
	decimals    int32
	priorityFee uint64

	rootCmd = &cobra.Command{
		Use:   "walletctl",
		Short: "Manage the multi-chain wallet from the terminal",
		Long: `Manage the multi-chain wallet from the terminal.

The PIN is prompted without echo for every command that touches secrets.
Configuration is read from the same environment variables as walletd.`,
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.AddCommand(createCmd(), importCmd(), addressCmd(), signCmd(), keysCmd(), resolveCmd(), pinCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, model.UserMessage(err)+": "+err.Error())
		os.Exit(1)
	}
}

// withApp loads configuration, opens the wallet and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()
	logger.Init(cfg.LogEnv)
	defer logger.Sync()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// withPIN prompts for the PIN and passes a copy that is cleared afterwards.
func withPIN(fn func(pin []byte) error) error {
	if err := config.PromptForPIN(); err != nil {
		return err
	}
	pin, err := config.GetPINBytes()
	if err != nil {
		return err
	}
	defer clear(pin)
	return fn(pin)
}

func parseChain() (model.Chain, error) {
	return model.ParseChain(chainName)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate and store a new mnemonic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(pin []byte) error {
					mnemonic, err := a.Service.CreateWallet(ctx, words, pin)
					if err != nil {
						return err
					}
					fmt.Println("Write down your recovery phrase and keep it offline:")
					fmt.Println(mnemonic)
					return nil
				})
			})
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "mnemonic length: 12 or 24")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import a mnemonic read from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(os.Stderr, "Enter mnemonic: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read mnemonic: %w", err)
			}
			mnemonic := strings.TrimSpace(line)

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(pin []byte) error {
					if err := a.Service.ImportWallet(ctx, mnemonic, pin); err != nil {
						return err
					}
					fmt.Println("Wallet imported")
					return nil
				})
			})
		},
	}
}

func addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive an account address",
		Example: `  walletctl address --chain evm --index 0
  walletctl address --index 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(pin []byte) error {
					if chainName == "" {
						addrs, err := a.Service.Addresses(ctx, pin, index)
						if err != nil {
							return err
						}
						return printJSON(addrs)
					}
					chain, err := parseChain()
					if err != nil {
						return err
					}
					addr, err := a.Service.Address(ctx, pin, chain, index)
					if err != nil {
						return err
					}
					if showQR {
						qr, err := common.AddressQRText(addr.Address)
						if err != nil {
							return err
						}
						fmt.Print(qr)
					}
					return printJSON(addr)
				})
			})
		},
	}
	cmd.Flags().StringVar(&chainName, "chain", "", "evm, tron or solana (default: all)")
	cmd.Flags().Uint32Var(&index, "index", 0, "account index")
	cmd.Flags().BoolVar(&showQR, "qr", false, "print a QR code of the address (with --chain)")
	return cmd
}

func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Build and sign a transfer",
		Example: `  walletctl sign --chain solana --from <addr> --to <addr> --amount 0.5
  walletctl sign --chain evm --from <addr> --to <addr> --amount 10 --token <contract> --decimals 6 --broadcast`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chain, err := parseChain()
			if err != nil {
				return err
			}
			params := transfer
			params.PriorityFee = priorityFee
			if params.TokenIdentifier != "" {
				params.IsToken = true
				if cmd.Flags().Changed("decimals") {
					d := decimals
					params.Decimals = &d
				}
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(pin []byte) error {
					var tx *model.SignedTransaction
					if imported {
						tx, err = a.Service.SignWithImportedKey(ctx, chain, pin, params)
					} else {
						tx, err = a.Service.SignTransfer(ctx, chain, pin, index, params)
					}
					if err != nil {
						return err
					}

					resp := model.SignResponse{Chain: tx.Chain, TxID: tx.TxID, Serialized: tx.SerializedHex()}
					if chain == model.ChainSolana {
						resp.Serialized = tx.SerializedBase64()
					}
					if broadcast {
						res, err := a.Service.Broadcast(ctx, tx)
						if err != nil {
							return err
						}
						resp.TxHash, resp.Explorer = res.TxHash, res.ExplorerURL
					}
					return printJSON(resp)
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&chainName, "chain", "", "evm, tron or solana")
	f.Uint32Var(&index, "index", 0, "account index of the signing key")
	f.BoolVar(&imported, "imported", false, "sign with the imported key for --from")
	f.StringVar(&transfer.From, "from", "", "sender address")
	f.StringVar(&transfer.To, "to", "", "recipient address")
	f.StringVar(&transfer.Amount, "amount", "", "amount in whole units, e.g. 1.5")
	f.StringVar(&transfer.TokenIdentifier, "token", "", "token contract or mint address")
	f.Int32Var(&decimals, "decimals", 0, "token decimals (required for EVM and Tron tokens)")
	f.Uint64Var(&priorityFee, "priority-fee", 0, "Solana compute unit price in micro-lamports")
	f.BoolVar(&broadcast, "broadcast", false, "submit the signed transaction")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage imported private keys",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List imported keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				entries, err := a.Service.Entries(ctx)
				if err != nil {
					return err
				}
				return printJSON(entries)
			})
		},
	}

	add := &cobra.Command{
		Use:   "import",
		Short: "Import a private key read from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			chain, err := parseChain()
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stderr, "Enter private key: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read private key: %w", err)
			}
			key := strings.TrimSpace(line)

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(pin []byte) error {
					entry, err := a.Service.ImportPrivateKey(ctx, chain, key, label, pin)
					if err != nil {
						return err
					}
					return printJSON(entry)
				})
			})
		},
	}
	add.Flags().StringVar(&chainName, "chain", "", "evm, tron or solana")
	add.Flags().StringVar(&label, "label", "", "optional label")
	_ = add.MarkFlagRequired("chain")

	remove := &cobra.Command{
		Use:   "delete <address>",
		Short: "Delete an imported key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := parseChain()
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Service.DeleteKey(ctx, args[0], chain)
			})
		},
	}
	remove.Flags().StringVar(&chainName, "chain", "", "evm, tron or solana")
	_ = remove.MarkFlagRequired("chain")

	clearAll := &cobra.Command{
		Use:   "clear",
		Short: "Delete every imported key (the mnemonic is kept)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Service.ClearKeys(ctx)
			})
		},
	}

	cmd.AddCommand(list, add, remove, clearAll)
	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Detect which Solana derivation style holds funds and remember it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(pin []byte) error {
					res, err := a.Service.ResolveSolanaStyle(ctx, pin)
					if err != nil {
						return err
					}
					for _, r := range res.Results {
						status := "empty"
						switch {
						case r.Err != nil:
							status = "lookup failed"
						case r.Funded:
							status = "funded"
						}
						fmt.Printf("%-10s %-22s %s  %s\n", r.Style.Name(), r.Path, r.Address, status)
					}
					fmt.Printf("using %s: %s\n", res.Style.Name(), res.Address)
					return nil
				})
			})
		},
	}
}

func pinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin",
		Short: "Change the PIN (same as the rekey tool)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return withPIN(func(oldPIN []byte) error {
					newPIN, err := config.PromptForNewPIN()
					if err != nil {
						return err
					}
					defer clear(newPIN)
					if err := a.Service.ChangePIN(ctx, oldPIN, newPIN); err != nil {
						return err
					}
					fmt.Println("PIN changed")
					return nil
				})
			})
		},
	}
}
