// Command minerid-node is the administration CLI for the miner-ID identity
// and DataRef stores: the §6.6 RPC surface as directly invocable
// subcommands, plus a maintenance daemon mode. The JSON-RPC/HTTP dispatcher
// and the transaction-funding wallet are external collaborators (spec.md
// §1); this binary only wires the stores and the signing-key/funding-
// tracking parts of that surface that need no collaborator to exercise.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/libsv/go-bt/v2/chainhash"
	"github.com/urfave/cli/v2"

	"github.com/bitcoin-sv/minerid-node/dataref"
	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/kvstore"
	"github.com/bitcoin-sv/minerid-node/minerid"
	"github.com/bitcoin-sv/minerid-node/primitives"
	"github.com/bitcoin-sv/minerid-node/rpc"
	"github.com/bitcoin-sv/minerid-node/settings"
	"github.com/bitcoin-sv/minerid-node/ulogger"
)

func main() {
	app := &cli.App{
		Name:  "minerid-node",
		Usage: "miner-ID identity and DataRef administration CLI",
		Commands: []*cli.Command{
			makeSigningKeyCommand(),
			fundingAddressCommand(),
			setFundingOutpointCommand(),
			getMinerInfoTxIDCommand(),
			getDataRefTxIDCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() ulogger.Logger {
	return ulogger.New("minerid-node", "info")
}

func newRPCServer(tSettings *settings.Settings, logger ulogger.Logger) (*rpc.Server, error) {
	if err := os.MkdirAll(tSettings.DataDir, 0o755); err != nil {
		return nil, err
	}

	// No chain/UTXO/broadcaster collaborator is wired at the CLI level: the
	// subcommands this binary exposes (signing key, funding address,
	// outpoint bookkeeping, txid lookup) don't need one. A host node
	// embedding this core supplies those when it builds its own
	// rpc.Server for createminerinfotx/createdatareftx/replaceminerinfotx.
	s, err := rpc.NewServer(tSettings.DataDir, nil, nil, nil, logger)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func makeSigningKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "makeminerinfotxsigningkey",
		Usage: "generate a new miner-info signing key and persist it to the datadir",
		Action: func(c *cli.Context) error {
			logger := newLogger()
			s, err := newRPCServer(settings.NewSettings(), logger)
			if err != nil {
				return err
			}

			if err := s.MakeMinerInfoTxSigningKey(context.Background()); err != nil {
				return err
			}

			logger.Infof("wrote new miner-info signing key")
			return nil
		},
	}
}

func fundingAddressCommand() *cli.Command {
	return &cli.Command{
		Name:  "getminerinfotxfundingaddress",
		Usage: "print the P2PKH address that funds miner-info/dataref transactions",
		Action: func(c *cli.Context) error {
			s, err := newRPCServer(settings.NewSettings(), newLogger())
			if err != nil {
				return err
			}

			addr, aerr := s.GetMinerInfoTxFundingAddress(context.Background())
			if aerr != nil {
				return aerr
			}

			fmt.Println(addr)
			return nil
		},
	}
}

func setFundingOutpointCommand() *cli.Command {
	return &cli.Command{
		Name:      "setminerinfotxfundingoutpoint",
		Usage:     "record the outpoint createminerinfotx/createdatareftx should next spend",
		ArgsUsage: "<txid> <vout>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return errors.NewInvalidArgumentError("expected <txid> <vout>")
			}

			txidHex := c.Args().Get(0)
			txidHash, err := chainhash.NewHashFromStr(txidHex)
			if err != nil {
				return errors.NewInvalidArgumentError("invalid txid %q", txidHex, err)
			}
			txid := *txidHash

			var vout uint32
			if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &vout); err != nil {
				return errors.NewInvalidArgumentError("invalid vout %q", c.Args().Get(1), err)
			}

			s, serr := newRPCServer(settings.NewSettings(), newLogger())
			if serr != nil {
				return serr
			}

			if err := s.SetMinerInfoTxFundingOutpoint(context.Background(), primitives.Outpoint{TxID: txid, Index: vout}); err != nil {
				return err
			}
			return nil
		},
	}
}

func getMinerInfoTxIDCommand() *cli.Command {
	return &cli.Command{
		Name:  "getminerinfotxid",
		Usage: "print the most recently minted miner-info txid",
		Action: func(c *cli.Context) error {
			s, err := newRPCServer(settings.NewSettings(), newLogger())
			if err != nil {
				return err
			}

			txid, terr := s.GetMinerInfoTxID(context.Background())
			if terr != nil {
				return terr
			}
			if txid == nil {
				fmt.Println("null")
				return nil
			}

			fmt.Println(txid.String())
			return nil
		},
	}
}

func getDataRefTxIDCommand() *cli.Command {
	return &cli.Command{
		Name:  "getdatareftxid",
		Usage: "print the most recently minted dataref txid",
		Action: func(c *cli.Context) error {
			s, err := newRPCServer(settings.NewSettings(), newLogger())
			if err != nil {
				return err
			}

			txid, terr := s.GetDataRefTxID(context.Background())
			if terr != nil {
				return terr
			}
			if txid == nil {
				fmt.Println("null")
				return nil
			}

			fmt.Println(txid.String())
			return nil
		},
	}
}

// serveCommand opens the miner-ID and DataRef stores and runs the
// background reputation-decay sweep (spec.md §4.I) until interrupted. The
// block-connected/disconnected/invalid-block event feed and the P2P
// transport that drives netparser are supplied by the host node; this mode
// only demonstrates and exercises the store/decay half of the daemon.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "open the miner-ID/DataRef stores and run the reputation-decay maintenance loop",
		Action: func(c *cli.Context) error {
			logger := newLogger()
			tSettings := settings.NewSettings()

			minerIDStore, serr := kvstore.Open(tSettings.MinerID.DBPath)
			if serr != nil {
				return serr
			}
			defer minerIDStore.Close()

			dataRefStore, serr := kvstore.Open(tSettings.DataRef.DBPath)
			if serr != nil {
				return serr
			}
			defer dataRefStore.Close()

			cfg := minerid.ReputationConfig{
				WindowN:     tSettings.MinerID.WindowSize,
				BaselineM:   tSettings.MinerID.ReputationM,
				MScale:      tSettings.MinerID.ReputationMScale,
				DecayPeriod: tSettings.MinerID.MDecayPeriod,
			}
			db := minerid.NewDB(minerIDStore, cfg)
			_ = dataref.NewDB(dataRefStore)

			logger.Infof("minerid-node serving: minerid db at %s, dataref db at %s", tSettings.MinerID.DBPath, tSettings.DataRef.DBPath)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					logger.Infof("minerid-node shutting down")
					return nil
				case <-ticker.C:
					if err := db.DecayReputations(); err != nil {
						logger.Errorf("reputation decay sweep failed: %v", err)
					}
				}
			}
		},
	}
}
