package rpc

// UserStats is the result of flashbots_getUserStats. Every field is optional;
// the relay omits what it does not track for the searcher.
type UserStats struct {
	IsHighPriority       *bool   `json:"isHighPriority,omitempty"`
	AllTimeMinerPayments *string `json:"allTimeMinerPayments,omitempty"`
	AllTimeGasSimulated  *string `json:"allTimeGasSimulated,omitempty"`
	Last7dMinerPayments  *string `json:"last7dMinerPayments,omitempty"`
	Last7dGasSimulated   *string `json:"last7dGasSimulated,omitempty"`
	Last1dMinerPayments  *string `json:"last1dMinerPayments,omitempty"`
	Last1dGasSimulated   *string `json:"last1dGasSimulated,omitempty"`
}

// GetBundleStatsParams identifies a bundle previously sent with eth_sendBundle.
type GetBundleStatsParams struct {
	BundleHash  string `json:"bundleHash" validate:"required,hexadecimal"`
	BlockNumber string `json:"blockNumber" validate:"required,hexadecimal"`
}

// BundleStats is the result of flashbots_getBundleStats.
type BundleStats struct {
	IsSimulated    *bool   `json:"isSimulated,omitempty"`
	IsSentToMiners *bool   `json:"isSentToMiners,omitempty"`
	IsHighPriority *bool   `json:"isHighPriority,omitempty"`
	SimulatedAt    *string `json:"simulatedAt,omitempty"`
	SubmittedAt    *string `json:"submittedAt,omitempty"`
	SentToMinersAt *string `json:"sentToMinersAt,omitempty"`
}

type PrivateTxPreferences struct {
	Fast bool `json:"fast"`
}

// SendPrivateTransactionParams submits one signed raw transaction. The relay
// stops trying after MaxBlockNumber when it is set.
type SendPrivateTransactionParams struct {
	Tx             string                `json:"tx" validate:"required,hexadecimal"`
	MaxBlockNumber *string               `json:"maxBlockNumber,omitempty" validate:"omitempty,hexadecimal"`
	Preferences    *PrivateTxPreferences `json:"preferences,omitempty"`
}

type CancelPrivateTransactionParams struct {
	TxHash string `json:"txHash" validate:"required,hexadecimal"`
}

// SendBundleParams is an ordered list of signed raw transactions targeted at
// one block.
type SendBundleParams struct {
	Txs               []string `json:"txs" validate:"required,min=1,dive,hexadecimal"`
	BlockNumber       string   `json:"blockNumber" validate:"required,hexadecimal"`
	MinTimestamp      *uint64  `json:"minTimestamp,omitempty"`
	MaxTimestamp      *uint64  `json:"maxTimestamp,omitempty"`
	RevertingTxHashes []string `json:"revertingTxHashes,omitempty" validate:"omitempty,dive,hexadecimal"`
}

type SendBundleResult struct {
	BundleHash string `json:"bundleHash"`
}

// CallBundleParams simulates Txs at BlockNumber on top of the state at
// StateBlockNumber, which may be a block tag such as "latest".
type CallBundleParams struct {
	Txs              []string `json:"txs" validate:"required,min=1,dive,hexadecimal"`
	BlockNumber      string   `json:"blockNumber" validate:"required,hexadecimal"`
	StateBlockNumber string   `json:"stateBlockNumber" validate:"required"`
	Timestamp        *int64   `json:"timestamp,omitempty"`
	Timeout          *int64   `json:"timeout,omitempty"`
	GasLimit         *uint64  `json:"gasLimit,omitempty"`
	Difficulty       *uint64  `json:"difficulty,omitempty"`
	BaseFee          *uint64  `json:"baseFee,omitempty"`
}

type CallBundleResult struct {
	BundleGasPrice    string               `json:"bundleGasPrice"`
	BundleHash        string               `json:"bundleHash"`
	CoinbaseDiff      string               `json:"coinbaseDiff"`
	EthSentToCoinbase string               `json:"ethSentToCoinbase"`
	GasFees           string               `json:"gasFees"`
	Results           []CallBundleTxResult `json:"results"`
	StateBlockNumber  int64                `json:"stateBlockNumber"`
	TotalGasUsed      int64                `json:"totalGasUsed"`
}

// CallBundleTxResult is the simulation outcome of one bundle transaction.
// Error and Revert are empty when the transaction succeeded.
type CallBundleTxResult struct {
	CoinbaseDiff      string `json:"coinbaseDiff"`
	EthSentToCoinbase string `json:"ethSentToCoinbase"`
	FromAddress       string `json:"fromAddress"`
	GasFees           string `json:"gasFees"`
	GasPrice          string `json:"gasPrice"`
	GasUsed           int64  `json:"gasUsed"`
	ToAddress         string `json:"toAddress"`
	TxHash            string `json:"txHash"`
	Value             string `json:"value"`
	Error             string `json:"error,omitempty"`
	Revert            string `json:"revert,omitempty"`
}
