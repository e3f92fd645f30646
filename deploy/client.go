package deploy

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
)

// Client wraps an ethclient connection with the deployer's account.
type Client struct {
	*ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewClient validates the config, loads the deployer key, and dials the
// network.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("deploy: parse private key: %w", err)
	}
	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("deploy: error casting public key to ECDSA")
	}
	addr := crypto.PubkeyToAddress(*publicKey)

	cl, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("deploy: dial %s: %w", cfg.RPCURL, err)
	}
	log.Debug().Str("addr", addr.String()).Str("rpc", cfg.RPCURL).Msg("deploy client loaded")

	return &Client{
		Client:     cl,
		privateKey: privateKey,
		address:    addr,
		chainID:    big.NewInt(cfg.ChainID),
	}, nil
}

// Address returns the deployer address derived from the loaded key.
func (c *Client) Address() common.Address {
	return c.address
}

// AccountBalance returns the deployer's native-coin balance at the latest block.
func (c *Client) AccountBalance(ctx context.Context) (*big.Int, error) {
	return c.BalanceAt(ctx, c.address, nil)
}

// Deploy submits the construction transaction (the contract takes no
// constructor arguments), waits for it to be mined, and returns the
// deployment result.
func (c *Client) Deploy(ctx context.Context, abiJSON string, bytecode []byte) (*Result, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("deploy: parse ABI: %w", err)
	}
	if len(bytecode) == 0 {
		return nil, errors.New("deploy: empty creation bytecode")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("deploy: create transactor: %w", err)
	}
	auth.Context = ctx

	addr, tx, _, err := bind.DeployContract(auth, parsed, bytecode, c.Client)
	if err != nil {
		return nil, fmt.Errorf("deploy: submit construction tx: %w", err)
	}
	log.Info().
		Str("tx", tx.Hash().Hex()).
		Str("contract", addr.Hex()).
		Msg("construction transaction submitted")

	if _, err := bind.WaitDeployed(ctx, c.Client, tx); err != nil {
		return nil, fmt.Errorf("deploy: wait for confirmation: %w", err)
	}
	receipt, err := c.TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, fmt.Errorf("deploy: fetch receipt: %w", err)
	}
	log.Info().
		Str("contract", addr.Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Uint64("gas_used", receipt.GasUsed).
		Msg("contract deployed")

	return &Result{
		ContractAddress: addr.Hex(),
		TransactionHash: tx.Hash().Hex(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		GasUsed:         receipt.GasUsed,
		DeployerAddress: c.address.Hex(),
		Network:         NetworkName,
		DeploymentTime:  time.Now().UTC(),
		ExplorerURL:     ExplorerAddressURL + addr.Hex(),
		VerificationURL: ExplorerVerifyURL + addr.Hex(),
	}, nil
}
