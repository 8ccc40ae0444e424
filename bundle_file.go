package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0xpanoramix/flashbots-relay/pkg/rpc"
)

const defaultStateBlock = "latest"

// BundleFile is a bundle described in YAML:
//
//	block: "0xcaa6fa"
//	stateBlock: latest
//	txs:
//	  - "0xf86b..."
type BundleFile struct {
	Txs               []string `yaml:"txs"`
	Block             string   `yaml:"block"`
	StateBlock        string   `yaml:"stateBlock"`
	MinTimestamp      *uint64  `yaml:"minTimestamp"`
	MaxTimestamp      *uint64  `yaml:"maxTimestamp"`
	RevertingTxHashes []string `yaml:"revertingTxHashes"`
	Timestamp         *int64   `yaml:"timestamp"`
	Timeout           *int64   `yaml:"timeout"`
	GasLimit          *uint64  `yaml:"gasLimit"`
	Difficulty        *uint64  `yaml:"difficulty"`
	BaseFee           *uint64  `yaml:"baseFee"`
}

func LoadBundleFile(path string) (*BundleFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var bundle BundleFile
	if err := yaml.NewDecoder(f).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle file %s: %w", path, err)
	}

	if len(bundle.Txs) == 0 {
		return nil, errors.New("bundle file has no txs")
	}
	if bundle.Block == "" {
		return nil, errors.New("bundle file has no block")
	}
	block, err := normalizeBlock(bundle.Block)
	if err != nil {
		return nil, err
	}
	bundle.Block = block

	return &bundle, nil
}

func (b *BundleFile) SendBundleParams() rpc.SendBundleParams {
	return rpc.SendBundleParams{
		Txs:               b.Txs,
		BlockNumber:       b.Block,
		MinTimestamp:      b.MinTimestamp,
		MaxTimestamp:      b.MaxTimestamp,
		RevertingTxHashes: b.RevertingTxHashes,
	}
}

func (b *BundleFile) CallBundleParams() rpc.CallBundleParams {
	stateBlock := b.StateBlock
	if stateBlock == "" {
		stateBlock = defaultStateBlock
	}
	return rpc.CallBundleParams{
		Txs:              b.Txs,
		BlockNumber:      b.Block,
		StateBlockNumber: stateBlock,
		Timestamp:        b.Timestamp,
		Timeout:          b.Timeout,
		GasLimit:         b.GasLimit,
		Difficulty:       b.Difficulty,
		BaseFee:          b.BaseFee,
	}
}
