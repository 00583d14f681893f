package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"token-sentry/config"
)

const erc20ABI = `[
  {"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// Client resolves a chain tag (eth|base|bsc) to its JSON-RPC endpoint and
// exposes the on-chain reads the bot needs: bytecode presence, ERC-20
// introspection and native balances.
type Client struct {
	clients map[string]*ethclient.Client
	abi     abi.ABI
	logger  *zap.SugaredLogger
}

func New(cfg *config.RPCConfig) *Client {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}

	clients := make(map[string]*ethclient.Client)
	for tag, endpoint := range map[string]string{
		"eth":  cfg.Eth,
		"base": cfg.Base,
		"bsc":  cfg.Bsc,
	} {
		if endpoint == "" {
			continue
		}
		client, dialErr := ethclient.Dial(endpoint)
		if dialErr != nil {
			panic(dialErr)
		}
		clients[tag] = client
	}

	return &Client{
		clients: clients,
		abi:     parsed,
		logger:  zap.S().Named("[chain]"),
	}
}

// IsValidAddress reports whether addr is 0x followed by exactly 40 hex
// characters. It never errors on malformed input.
func IsValidAddress(addr string) bool {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return false
	}
	for _, c := range addr[2:] {
		if !isHexChar(c) {
			return false
		}
	}
	return true
}

func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// IsValidTokenContract reports whether addr carries bytecode and answers at
// least one ERC-20 introspection call. RPC failures count as "cannot
// confirm" and yield false.
func (c *Client) IsValidTokenContract(ctx context.Context, chainTag, addr string) bool {
	if !IsValidAddress(addr) {
		return false
	}

	client, err := c.clientFor(chainTag)
	if err != nil {
		c.logger.Warnf("Token contract check skipped: %s", err.Error())
		return false
	}

	address := ethcommon.HexToAddress(addr)
	code, err := client.CodeAt(ctx, address, nil)
	if err != nil {
		c.logger.Warnf("eth_getCode failed for %s on %s: %s", addr, chainTag, err.Error())
		return false
	}
	if len(code) == 0 {
		return false
	}

	for _, method := range []string{"symbol", "name", "decimals"} {
		if c.callSucceeds(ctx, client, address, method) {
			return true
		}
	}
	return false
}

func (c *Client) callSucceeds(ctx context.Context, client *ethclient.Client, address ethcommon.Address, method string) bool {
	data, err := c.abi.Pack(method)
	if err != nil {
		return false
	}

	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, nil)
	if err != nil || len(out) == 0 {
		return false
	}

	_, err = c.abi.Unpack(method, out)
	return err == nil
}

// Balance returns the native coin balance of addr in wei.
func (c *Client) Balance(ctx context.Context, chainTag, addr string) (*big.Int, error) {
	client, err := c.clientFor(chainTag)
	if err != nil {
		return nil, err
	}
	return client.BalanceAt(ctx, ethcommon.HexToAddress(addr), nil)
}

func (c *Client) clientFor(chainTag string) (*ethclient.Client, error) {
	client, ok := c.clients[chainTag]
	if !ok {
		return nil, fmt.Errorf("unknown chain tag %q", chainTag)
	}
	return client, nil
}

// Chains lists the chain tags with a configured RPC endpoint.
func (c *Client) Chains() []string {
	tags := make([]string, 0, len(c.clients))
	for tag := range c.clients {
		tags = append(tags, tag)
	}
	return tags
}
