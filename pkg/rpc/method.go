package rpc

// Method is a relay JSON-RPC method name.
type Method string

const (
	// GetUserStatsMethod returns the searcher's reputation and payment totals.
	GetUserStatsMethod Method = "flashbots_getUserStats"
	// GetBundleStatsMethod returns simulation and delivery state of one bundle.
	GetBundleStatsMethod Method = "flashbots_getBundleStats"
	// SendPrivateTransactionMethod submits a single transaction privately.
	SendPrivateTransactionMethod Method = "eth_sendPrivateTransaction"
	// CancelPrivateTransactionMethod stops a private transaction from being resubmitted.
	CancelPrivateTransactionMethod Method = "eth_cancelPrivateTransaction"
	// SendBundleMethod submits a bundle for inclusion at a target block.
	SendBundleMethod Method = "eth_sendBundle"
	// CallBundleMethod simulates a bundle against a given state block.
	CallBundleMethod Method = "eth_callBundle"
)

// String returns the wire name of the method.
func (m Method) String() string {
	return string(m)
}
