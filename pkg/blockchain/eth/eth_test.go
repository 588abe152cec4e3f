package eth

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/noloss/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	tokenAddress = "0x00000000000000000000000000000000000000aa"
	userAddress  = "0x00000000000000000000000000000000000000bb"
)

func newTestToken(t *testing.T, client *mocks.EthClient) (*ERC20Token, *bind.TransactOpts) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(1337))
	require.NoError(t, err)
	opts.Nonce = big.NewInt(0)
	opts.GasPrice = big.NewInt(1)
	opts.GasLimit = 100_000

	token, err := NewERC20Token(client, tokenAddress, opts)
	require.NoError(t, err)

	return token, opts
}

func methodIs(name string) func(*ethtypes.Transaction) bool {
	return func(tx *ethtypes.Transaction) bool {
		return bytes.HasPrefix(tx.Data(), parsedERC20ABI.Methods[name].ID)
	}
}

func Test_ERC20Token_BalanceOf(t *testing.T) {
	client := &mocks.EthClient{}
	token, _ := newTestToken(t, client)

	client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(common.LeftPadBytes(big.NewInt(1234).Bytes(), 32), nil)

	balance, err := token.BalanceOf(context.Background(), userAddress)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1234), balance)

	_, err = token.BalanceOf(context.Background(), "not-an-address")
	require.Error(t, err)
}

func Test_ERC20Token_Transfer(t *testing.T) {
	client := &mocks.EthClient{}
	token, opts := newTestToken(t, client)
	ctx := context.Background()

	client.On("SendTransaction", mock.Anything, mock.MatchedBy(methodIs("transfer"))).Return(nil).Once()
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}, nil).Once()

	err := token.Transfer(ctx, opts.From.Hex(), userAddress, big.NewInt(10))
	require.NoError(t, err)

	client.On("SendTransaction", mock.Anything, mock.MatchedBy(methodIs("transferFrom"))).Return(nil).Once()
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed, BlockNumber: big.NewInt(5)}, nil).Once()

	err = token.Transfer(ctx, userAddress, opts.From.Hex(), big.NewInt(10))
	require.ErrorIs(t, err, ErrTransactionReverted)

	client.AssertExpectations(t)
}

func Test_ERC20Token_TransferSendFailed(t *testing.T) {
	client := &mocks.EthClient{}
	token, opts := newTestToken(t, client)

	client.On("SendTransaction", mock.Anything, mock.Anything).Return(errors.New("nonce too low"))

	err := token.Transfer(context.Background(), opts.From.Hex(), userAddress, big.NewInt(10))
	require.EqualError(t, err, "nonce too low")
	client.AssertNotCalled(t, "TransactionReceipt", mock.Anything, mock.Anything)
}

func Test_HeaderClock(t *testing.T) {
	client := &mocks.EthClient{}
	clock := NewHeaderClock(client)
	ctx := context.Background()

	client.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&ethtypes.Header{Number: big.NewInt(300_000), Time: 1_700_000_000}, nil).Once()
	client.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&ethtypes.Header{Number: big.NewInt(300_001), Time: 1_700_000_012}, nil).Once()

	height, ts, err := clock.CurrentLedger(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(300_000), height)
	require.Equal(t, uint64(1_700_000_000), ts)

	height, err = clock.CurrentHeight(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(300_001), height)

	client.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&ethtypes.Header{Number: new(big.Int).Lsh(big.NewInt(1), 40)}, nil).Once()

	_, _, err = clock.CurrentLedger(ctx)
	require.Error(t, err)
	client.AssertNumberOfCalls(t, "HeaderByNumber", 3)
}

func Test_NewTransactor(t *testing.T) {
	client := &mocks.EthClient{}
	client.On("ChainID", mock.Anything).Return(big.NewInt(1337), nil)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	opts, err := NewTransactor(context.Background(), client,
		common.Bytes2Hex(crypto.FromECDSA(key)))
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), opts.From)

	_, err = NewTransactor(context.Background(), client, "zz")
	require.Error(t, err)
}
