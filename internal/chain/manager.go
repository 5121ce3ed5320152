package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 协作方合约名称，与配置中 contracts 的键一致
const (
	ContractVault  = "vault"  // 收益金库 (ERC-4626)
	ContractAMM    = "amm"    // AMM 路由
	ContractPoints = "points" // 积分代币
	ContractStable = "stable" // 稳定币
)

// 等待交易上链的超时时间
const txWaitTimeout = 2 * time.Minute

// Manager 单链管理器
// 持有客户端、签名私钥与所有启用的协作方合约
type Manager struct {
	mu         sync.RWMutex
	contracts  map[string]*Contract
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	config     config.ChainConfig
}

// NewManager 创建单链管理器
func NewManager(cfg config.ChainConfig) (*Manager, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	manager := &Manager{
		contracts:  make(map[string]*Contract),
		privateKey: privateKey,
		config:     cfg,
	}

	if err := manager.initClient(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	if err := manager.initContracts(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize contracts: %w", err)
	}

	return manager, nil
}

// initClient 初始化客户端并测试连接
func (m *Manager) initClient(cfg config.ChainConfig) error {
	if cfg.RpcUrl == "" {
		return fmt.Errorf("no RPC URL configured")
	}

	supported := map[string]bool{
		"ethereum": true, "polygon": true, "bsc": true, "arbitrum": true, "optimism": true,
	}
	if !supported[cfg.ChainType] {
		return fmt.Errorf("unsupported chain type: %s", cfg.ChainType)
	}

	logger.Info("Creating %s client connection (RPC: %s)", cfg.ChainType, cfg.RpcUrl)
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.ChainType, err)
	}

	if _, err := client.BlockNumber(context.TODO()); err != nil {
		client.Close()
		return fmt.Errorf("client connection test failed: %w", err)
	}

	m.client = client
	logger.Info("Successfully initialized client (chain id: %d)", cfg.ChainId)
	return nil
}

// initContracts 初始化所有启用的合约
func (m *Manager) initContracts(cfg config.ChainConfig) error {
	for contractName, contractCfg := range cfg.Contracts {
		if !contractCfg.Enabled {
			logger.Info("Skipping disabled contract: %s", contractName)
			continue
		}

		contract, err := NewContract(m.client, contractName, contractCfg, cfg)
		if err != nil {
			return fmt.Errorf("failed to create contract %s: %w", contractName, err)
		}

		m.contracts[contractName] = contract
		logger.Info("Successfully initialized contract: %s (address: %s)", contractName, contractCfg.Address)
	}

	logger.Info("Successfully initialized %d contracts", len(m.contracts))
	return nil
}

// GetClient 获取客户端
func (m *Manager) GetClient() *ethclient.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// GetContract 获取指定合约
func (m *Manager) GetContract(contractName string) (*Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contract, exists := m.contracts[contractName]
	if !exists {
		return nil, fmt.Errorf("contract %s not found", contractName)
	}
	return contract, nil
}

// GetContracts 获取所有合约（副本）
func (m *Manager) GetContracts() map[string]*Contract {
	m.mu.RLock()
	defer m.mu.RUnlock()

	contracts := make(map[string]*Contract)
	for name, contract := range m.contracts {
		contracts[name] = contract
	}
	return contracts
}

// GetConfig 获取链配置
func (m *Manager) GetConfig() config.ChainConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// AccountAddress 获取签名账户地址
func (m *Manager) AccountAddress() common.Address {
	return crypto.PubkeyToAddress(m.privateKey.PublicKey)
}

// Auth 获取交易授权
func (m *Manager) Auth() (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(m.privateKey, big.NewInt(m.config.ChainId))
}

// WaitMined 等待交易上链并检查执行结果
func (m *Manager) WaitMined(tx *types.Transaction) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), txWaitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, m.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// GetHealthStatus 获取健康状态
func (m *Manager) GetHealthStatus() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := map[string]interface{}{
		"chain_type":    m.config.ChainType,
		"chain_id":      m.config.ChainId,
		"client_status": "connected",
		"contracts":     make(map[string]interface{}),
	}

	if m.client != nil {
		if _, err := m.client.BlockNumber(context.TODO()); err != nil {
			health["client_status"] = "disconnected"
		}
	} else {
		health["client_status"] = "not_initialized"
	}

	for contractName, contract := range m.contracts {
		health["contracts"].(map[string]interface{})[contractName] = map[string]interface{}{
			"address":   contract.GetAddress().Hex(),
			"block_num": contract.GetBlockNum(),
		}
	}

	return health
}

// Close 关闭管理器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Close()
	}

	logger.Info("Chain manager closed")
	return nil
}
