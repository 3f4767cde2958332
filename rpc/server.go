// Package rpc implements the small administration surface of §6.6: the
// handful of commands operations/tests use to mint and track miner-info and
// dataref transactions. Grounded on services/rpc/handlers.go's
// handler-function-per-command shape and its gocore.NewStat/tracing/ulogger
// usage, simplified away from the btcjson command-dispatch framework (that
// belongs to the RPC dispatcher collaborator spec.md §1 excludes) down to a
// direct Go method surface one of those dispatchers can wrap.
package rpc

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/libsv/go-bk/bec"
	"github.com/libsv/go-bt/v2/bscript"
	"github.com/ordishs/gocore"
	"github.com/segmentio/encoding/json"

	"github.com/bitcoin-sv/minerid-node/collaborators"
	"github.com/bitcoin-sv/minerid-node/errors"
	"github.com/bitcoin-sv/minerid-node/primitives"
	"github.com/bitcoin-sv/minerid-node/tracing"
	"github.com/bitcoin-sv/minerid-node/ulogger"
)

var rpcStat = gocore.NewStat("rpc")

const signingKeyFileName = "minerinfotx_signing_key.hex"
const stateFileName = "rpc_state.json"

// TxBroadcaster is the wallet/distributor collaborator that funds, signs,
// and submits a transaction built from a set of outputs, returning its
// txid. UTXO selection and network submission are the excluded external
// responsibilities named in spec.md §1; this surface only ever calls into
// them, never implements them (mirrors collaborators.ChainReader).
type TxBroadcaster interface {
	Broadcast(ctx context.Context, outputs []TxOutput) (primitives.Hash256, error)
}

// TxOutput is a single output a broadcast transaction must carry.
type TxOutput struct {
	LockingScript []byte
	Satoshis      uint64
}

// state is the small durable record this surface keeps between restarts:
// the most recent miner-info/dataref txids and the funding outpoint an
// operator has pointed it at. Everything else (the signing key) lives in
// its own file so it never round-trips through JSON.
type state struct {
	MinerInfoTxID     *primitives.Hash256 `json:"minerInfoTxId,omitempty"`
	MinerInfoHeight   primitives.Height   `json:"minerInfoHeight"`
	DataRefTxID       *primitives.Hash256 `json:"dataRefTxId,omitempty"`
	FundingOutpointOK bool                `json:"fundingOutpointSet"`
	FundingOutpoint   primitives.Outpoint `json:"fundingOutpoint"`
}

// Server implements the §6.6 command surface. One Server per node, backed
// by a small datadir-rooted state file plus a signing-key file, matching
// the teacher's "write BIP32-style key material to the datadir" convention
// (util/p2p/P2PNode.go's generatePrivateKey/readPrivateKey does the same
// for its libp2p identity).
type Server struct {
	mu sync.Mutex

	dataDir     string
	broadcaster TxBroadcaster
	chain       collaborators.ChainReader
	utxos       collaborators.UTXOLookup
	logger      ulogger.Logger

	st state
}

// NewServer loads any existing state/signing-key files under dataDir and
// returns a ready Server. A missing state file is not an error: a fresh
// node has none yet.
func NewServer(dataDir string, broadcaster TxBroadcaster, chain collaborators.ChainReader, utxos collaborators.UTXOLookup, logger ulogger.Logger) (*Server, *errors.Error) {
	s := &Server{
		dataDir:     dataDir,
		broadcaster: broadcaster,
		chain:       chain,
		utxos:       utxos,
		logger:      logger,
	}

	if err := s.loadState(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) statePath() string {
	return filepath.Join(s.dataDir, stateFileName)
}

func (s *Server) signingKeyPath() string {
	return filepath.Join(s.dataDir, signingKeyFileName)
}

func (s *Server) loadState() *errors.Error {
	b, err := os.ReadFile(s.statePath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.NewStorageError("could not read rpc state file", err)
	}

	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return errors.NewCorruptDataError("could not parse rpc state file", err)
	}
	s.st = st
	return nil
}

// saveState persists s.st to disk. Must be called with s.mu held.
func (s *Server) saveState() *errors.Error {
	b, err := json.Marshal(s.st)
	if err != nil {
		return errors.NewProcessingError("could not marshal rpc state", err)
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.NewStorageError("could not create rpc datadir", err)
	}

	if err := os.WriteFile(s.statePath(), b, 0o600); err != nil {
		return errors.NewStorageError("could not write rpc state file", err)
	}

	return nil
}

// loadSigningKey reads and parses the persisted signing key. Returns
// ERR_NOT_FOUND if makeminerinfotxsigningkey has never been called.
func (s *Server) loadSigningKey() (*bec.PrivateKey, *errors.Error) {
	b, err := os.ReadFile(s.signingKeyPath())
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("no miner-info signing key has been generated yet")
	}
	if err != nil {
		return nil, errors.NewStorageError("could not read miner-info signing key file", err)
	}

	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return nil, errors.NewCorruptDataError("miner-info signing key file is not valid hex", err)
	}

	priv, pub := bec.PrivKeyFromBytes(bec.S256(), raw)
	_ = pub
	return priv, nil
}

// MakeMinerInfoTxSigningKey generates a fresh secp256k1 signing key and
// writes it to the datadir, overwriting any previous key. Grounded on §6.6;
// simplified to a single persisted key rather than a full BIP32 chain,
// since no hdkeychain/bip32 dependency is present anywhere in the examples
// this module draws on (see DESIGN.md).
func (s *Server) MakeMinerInfoTxSigningKey(ctx context.Context) *errors.Error {
	_, _, deferFn := tracing.StartTracing(ctx, "MakeMinerInfoTxSigningKey",
		tracing.WithParentStat(rpcStat),
		tracing.WithLogMessage(s.logger, "[MakeMinerInfoTxSigningKey] called"),
	)
	defer deferFn()

	priv, err := bec.NewPrivateKey(bec.S256())
	if err != nil {
		return errors.NewProcessingError("could not generate miner-info signing key", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.NewStorageError("could not create rpc datadir", err)
	}

	encoded := hex.EncodeToString(priv.Serialize())
	if err := os.WriteFile(s.signingKeyPath(), []byte(encoded), 0o600); err != nil {
		return errors.NewStorageError("could not write miner-info signing key file", err)
	}

	return nil
}

// GetMinerInfoTxFundingAddress derives the P2PKH address operators must
// fund before createminerinfotx/createdatareftx can spend from it.
func (s *Server) GetMinerInfoTxFundingAddress(ctx context.Context) (string, *errors.Error) {
	_, _, deferFn := tracing.StartTracing(ctx, "GetMinerInfoTxFundingAddress", tracing.WithParentStat(rpcStat))
	defer deferFn()

	priv, err := s.loadSigningKey()
	if err != nil {
		return "", err
	}

	addr, aerr := bscript.NewAddressFromPublicKey(priv.PubKey(), true)
	if aerr != nil {
		return "", errors.NewProcessingError("could not derive funding address", aerr)
	}

	return addr.AddressString, nil
}

// SetMinerInfoTxFundingOutpoint records the outpoint createminerinfotx/
// createdatareftx should next spend from. Callers are expected to have
// funded GetMinerInfoTxFundingAddress's address with that outpoint first.
func (s *Server) SetMinerInfoTxFundingOutpoint(ctx context.Context, outpoint primitives.Outpoint) *errors.Error {
	ctx, _, deferFn := tracing.StartTracing(ctx, "SetMinerInfoTxFundingOutpoint", tracing.WithParentStat(rpcStat))
	defer deferFn()

	if s.utxos != nil {
		unspent, err := s.utxos.IsUnspent(ctx, outpoint)
		if err != nil {
			return errors.NewProcessingError("could not check funding outpoint", err)
		}
		if !unspent {
			return errors.NewInvalidArgumentError("funding outpoint %s:%d is already spent", outpoint.TxID.String(), outpoint.Index)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.FundingOutpoint = outpoint
	s.st.FundingOutpointOK = true

	return s.saveState()
}

// GetMinerInfoTxID returns the most recently minted miner-info txid, or nil
// if none has been created yet.
func (s *Server) GetMinerInfoTxID(ctx context.Context) (*primitives.Hash256, *errors.Error) {
	_, _, deferFn := tracing.StartTracing(ctx, "GetMinerInfoTxID", tracing.WithParentStat(rpcStat))
	defer deferFn()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.MinerInfoTxID, nil
}

// GetDataRefTxID returns the most recently minted dataref txid, or nil if
// none has been created yet.
func (s *Server) GetDataRefTxID(ctx context.Context) (*primitives.Hash256, *errors.Error) {
	_, _, deferFn := tracing.StartTracing(ctx, "GetDataRefTxID", tracing.WithParentStat(rpcStat))
	defer deferFn()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DataRefTxID, nil
}

// CreateMinerInfoTx mints a fresh miner-info transaction carrying
// scriptPubKey as its single output and records its txid. Actual UTXO
// selection, signing, and submission are delegated to s.broadcaster (the
// excluded wallet/distributor collaborator).
func (s *Server) CreateMinerInfoTx(ctx context.Context, scriptPubKey []byte) (primitives.Hash256, *errors.Error) {
	ctx, _, deferFn := tracing.StartTracing(ctx, "CreateMinerInfoTx",
		tracing.WithParentStat(rpcStat),
		tracing.WithLogMessage(s.logger, "[CreateMinerInfoTx] called"),
	)
	defer deferFn()

	s.mu.Lock()
	if !s.st.FundingOutpointOK {
		s.mu.Unlock()
		return primitives.Hash256{}, errors.NewStateError("no funding outpoint set; call setminerinfotxfundingoutpoint first")
	}
	s.mu.Unlock()

	txid, err := s.broadcaster.Broadcast(ctx, []TxOutput{{LockingScript: scriptPubKey, Satoshis: 0}})
	if err != nil {
		return primitives.Hash256{}, errors.NewProcessingError("could not broadcast miner-info transaction", err)
	}

	height := s.currentHeight(ctx)

	s.mu.Lock()
	s.st.MinerInfoTxID = &txid
	s.st.MinerInfoHeight = height
	saveErr := s.saveState()
	s.mu.Unlock()
	if saveErr != nil {
		return primitives.Hash256{}, saveErr
	}

	return txid, nil
}

// ReplaceMinerInfoTx re-mints the miner-info transaction, but is a no-op
// (returning the existing txid) when one was already created at the
// current chain height — §6.6's "idempotent against the current chain
// height".
func (s *Server) ReplaceMinerInfoTx(ctx context.Context, scriptPubKey []byte) (primitives.Hash256, *errors.Error) {
	ctx, _, deferFn := tracing.StartTracing(ctx, "ReplaceMinerInfoTx", tracing.WithParentStat(rpcStat))
	defer deferFn()

	height := s.currentHeight(ctx)

	s.mu.Lock()
	existing := s.st.MinerInfoTxID
	existingHeight := s.st.MinerInfoHeight
	s.mu.Unlock()

	if existing != nil && height != 0 && existingHeight == height {
		return *existing, nil
	}

	return s.CreateMinerInfoTx(ctx, scriptPubKey)
}

// CreateDataRefTx mints a dataref transaction carrying one output per
// scriptPubKey and records its txid.
func (s *Server) CreateDataRefTx(ctx context.Context, scriptPubKeys [][]byte) (primitives.Hash256, *errors.Error) {
	ctx, _, deferFn := tracing.StartTracing(ctx, "CreateDataRefTx",
		tracing.WithParentStat(rpcStat),
		tracing.WithLogMessage(s.logger, "[CreateDataRefTx] called"),
	)
	defer deferFn()

	if len(scriptPubKeys) == 0 {
		return primitives.Hash256{}, errors.NewInvalidArgumentError("createdatareftx requires at least one scriptPubKey")
	}

	s.mu.Lock()
	if !s.st.FundingOutpointOK {
		s.mu.Unlock()
		return primitives.Hash256{}, errors.NewStateError("no funding outpoint set; call setminerinfotxfundingoutpoint first")
	}
	s.mu.Unlock()

	outputs := make([]TxOutput, len(scriptPubKeys))
	for i, sp := range scriptPubKeys {
		outputs[i] = TxOutput{LockingScript: sp, Satoshis: 0}
	}

	txid, err := s.broadcaster.Broadcast(ctx, outputs)
	if err != nil {
		return primitives.Hash256{}, errors.NewProcessingError("could not broadcast dataref transaction", err)
	}

	s.mu.Lock()
	s.st.DataRefTxID = &txid
	saveErr := s.saveState()
	s.mu.Unlock()
	if saveErr != nil {
		return primitives.Hash256{}, saveErr
	}

	return txid, nil
}

// currentHeight returns the chain collaborator's current tip height, or 0
// if the collaborator is absent or fails — replaceminerinfotx degrades to
// "always replace" in that case rather than failing.
func (s *Server) currentHeight(ctx context.Context) primitives.Height {
	if s.chain == nil {
		return 0
	}

	height, err := s.chain.TipHeight(ctx)
	if err != nil {
		return 0
	}
	return height
}
