package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blues/lps/internal/chain"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// 每次轮询处理的区块批量大小，过大容易触发节点限流
const batchSize = int64(500)

// EventMonitor 链上事件监控器
// 轮询协作方合约的日志，把积分与 LP 份额的链上变动同步进奖励账本
type EventMonitor struct {
	chainManager   *chain.Manager
	db             *gorm.DB
	eventProcessor *EventProcessor
	startBlockNum  int64
	pollInterval   time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
	retryCount     int
	mu             sync.RWMutex // 保护 startBlockNum 的并发访问
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(chainManager *chain.Manager, db *gorm.DB, processor *EventProcessor, pollInterval time.Duration) *EventMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventMonitor{
		chainManager:   chainManager,
		db:             db,
		eventProcessor: processor,
		pollInterval:   pollInterval,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	logger.Info("Starting blockchain event monitor")

	contracts := m.chainManager.GetContracts()
	if len(contracts) == 0 {
		return fmt.Errorf("no contracts available for monitoring")
	}
	logger.Info("Found %d contracts to monitor", len(contracts))

	client := m.chainManager.GetClient()
	if client == nil {
		return fmt.Errorf("chain client not available")
	}

	currentBlock, err := m.getCurrentBlockNumber()
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain: %w", err)
	}
	logger.Info("Connected to blockchain, current block: %d", currentBlock)

	startBlock := m.getStartBlockNum()
	if startBlock == 0 {
		return fmt.Errorf("failed to determine start block number")
	}

	m.mu.Lock()
	m.startBlockNum = startBlock
	m.mu.Unlock()

	logger.Info("Starting monitor from block %d", startBlock)
	go m.loop()

	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	logger.Info("Stopping blockchain event monitor")
	m.cancel()
}

// loop 监控循环
func (m *EventMonitor) loop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Monitor stopped")
			return
		case <-ticker.C:
			currentBlock, err := m.getCurrentBlockNumber()
			if err != nil {
				m.handleError(fmt.Errorf("failed to get current block number: %w", err))
				continue
			}

			contracts := m.chainManager.GetContracts()
			if len(contracts) == 0 {
				continue
			}

			from := m.getStartBlockNum()
			if from > currentBlock {
				continue
			}

			if err := m.processBlocksInBatches(contracts, from, currentBlock); err != nil {
				m.handleError(fmt.Errorf("error processing blocks: %w", err))
			}
		}
	}
}

// processBlocksInBatches 分批处理区块
func (m *EventMonitor) processBlocksInBatches(contracts map[string]*chain.Contract, fromBlock, toBlock int64) error {
	for currentFrom := fromBlock; currentFrom <= toBlock; currentFrom += batchSize {
		currentTo := currentFrom + batchSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		if err := m.processBatchBlocks(contracts, currentFrom, currentTo); err != nil {
			if m.isAPIRateLimitError(err) {
				return err
			}
			logger.Error("Error processing blocks %d-%d: %v", currentFrom, currentTo, err)
			continue
		}

		m.updateStartBlockNum(currentTo + 1)

		// 批次之间留间隔，避免节点限流
		time.Sleep(time.Millisecond * 500)
	}

	return nil
}

// processBatchBlocks 批量处理一段区块
func (m *EventMonitor) processBatchBlocks(contracts map[string]*chain.Contract, fromBlock, toBlock int64) error {
	block := chain.NewBlock()
	client := m.chainManager.GetClient()

	contractAddresses, contractMap := m.getDeployedContracts(contracts, toBlock)
	if len(contractAddresses) == 0 {
		return nil
	}

	logs, err := block.GetBatchBlockLogs(client, contractAddresses, fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("error getting logs for blocks %d-%d: %w", fromBlock, toBlock, err)
	}
	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs for blocks %d-%d", len(logs), fromBlock, toBlock)

	logsByContract := m.groupLogsByContract(logs)
	if len(logsByContract) == 0 {
		return nil
	}

	// 每个合约一条协程，合约内日志保持顺序
	tempPool, err := ants.NewPool(len(logsByContract))
	if err != nil {
		return fmt.Errorf("failed to create temporary pool: %w", err)
	}
	defer tempPool.Release()

	var wg sync.WaitGroup
	for address, contractLogs := range logsByContract {
		contract := contractMap[address]
		if contract == nil {
			logger.Warn("Unknown contract address: %s", address.Hex())
			continue
		}

		wg.Add(1)
		logs := contractLogs
		err := tempPool.Submit(func() {
			defer wg.Done()
			m.processContractLogs(contract, logs)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit task to pool: %v", err)
		}
	}
	wg.Wait()

	return nil
}

// processContractLogs 按顺序处理单个合约的日志
func (m *EventMonitor) processContractLogs(contract *chain.Contract, logs []types.Log) {
	for _, log := range logs {
		eventData, err := contract.ParseEvent(log)
		if err != nil {
			logger.Error("Error parsing event for contract %s: %v", contract.GetName(), err)
			continue
		}

		eventDataJSON, err := json.Marshal(eventData)
		if err != nil {
			logger.Error("Failed to marshal event data to JSON: %v", err)
			continue
		}

		event := &model.EventModel{
			ContractAddress: contract.GetAddress().Hex(),
			ContractName:    contract.GetName(),
			BlockNum:        int64(log.BlockNumber),
			TxHash:          log.TxHash.Hex(),
			LogIndex:        int64(log.Index),
			EventName:       eventData["eventName"].(string),
			Data:            string(eventDataJSON),
		}

		if err := m.eventProcessor.ProcessEvent(event, eventData); err != nil {
			logger.Error("Error processing event for contract %s: %v", contract.GetName(), err)
			continue
		}
	}
}

// getCurrentBlockNumber 获取当前最新区块号
func (m *EventMonitor) getCurrentBlockNumber() (int64, error) {
	block := chain.NewBlock()
	return block.GetCurrentBlockNumber(m.chainManager.GetClient())
}

// getStartBlockNum 获取起始区块号
// 取合约部署区块与数据库已处理区块中的较大者
func (m *EventMonitor) getStartBlockNum() int64 {
	m.mu.RLock()
	startBlock := m.startBlockNum
	m.mu.RUnlock()
	if startBlock > 0 {
		return startBlock
	}

	contracts := m.chainManager.GetContracts()
	if len(contracts) == 0 {
		logger.Error("No contracts found in configuration")
		return 0
	}

	minDeployBlock := int64(0)
	first := true
	for _, contract := range contracts {
		if first || contract.GetBlockNum() < minDeployBlock {
			minDeployBlock = contract.GetBlockNum()
			first = false
		}
	}

	var maxProcessedBlock int64
	err := m.db.Model(&model.EventModel{}).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&maxProcessedBlock).Error
	if err != nil {
		logger.Error("Failed to get max processed block number from database: %v", err)
		return minDeployBlock
	}

	finalStartBlock := minDeployBlock
	if maxProcessedBlock > minDeployBlock {
		finalStartBlock = maxProcessedBlock + 1
	}

	logger.Info("Final start block: %d (config: %d, db: %d)", finalStartBlock, minDeployBlock, maxProcessedBlock)
	return finalStartBlock
}

// updateStartBlockNum 更新起始区块号
func (m *EventMonitor) updateStartBlockNum(blockNum int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startBlockNum = blockNum
}

// handleError 处理错误
func (m *EventMonitor) handleError(err error) {
	m.retryCount++
	logger.Error("Monitor encountered error (retry %d): %v", m.retryCount, err)
}

// GetStatus 获取监控状态
func (m *EventMonitor) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"start_block":    m.getStartBlockNum(),
		"contract_count": len(m.chainManager.GetContracts()),
		"chain_info":     m.chainManager.GetHealthStatus(),
	}
}

// getDeployedContracts 过滤出区块范围内已部署的合约
func (m *EventMonitor) getDeployedContracts(contracts map[string]*chain.Contract, toBlock int64) ([]common.Address, map[common.Address]*chain.Contract) {
	var contractAddresses []common.Address
	contractMap := make(map[common.Address]*chain.Contract)

	for _, contract := range contracts {
		if toBlock < contract.GetBlockNum() {
			continue
		}
		address := contract.GetAddress()
		contractAddresses = append(contractAddresses, address)
		contractMap[address] = contract
	}

	return contractAddresses, contractMap
}

// isAPIRateLimitError 检查是否为节点限流错误
func (m *EventMonitor) isAPIRateLimitError(err error) bool {
	return strings.Contains(err.Error(), "Too Many Requests")
}

// groupLogsByContract 按合约地址分组日志
func (m *EventMonitor) groupLogsByContract(logs []types.Log) map[common.Address][]types.Log {
	logsByContract := make(map[common.Address][]types.Log)
	for _, log := range logs {
		logsByContract[log.Address] = append(logsByContract[log.Address], log)
	}
	return logsByContract
}
