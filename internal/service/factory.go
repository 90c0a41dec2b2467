package service

import (
	"fmt"

	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

type AppServices struct {
	AccountService    *AccountService
	WalletService     *WalletService
	SettlementService *SettlementService
	PayoutService     *PayoutService
}

type FactoryArgs struct {
	Gateway             GatewayClient
	OrderSecret         []byte
	WelcomeBonus        int64
	CreatorSharePercent int64
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	accountService, accountServiceErr := NewAccountService(unitOfWork, args.WelcomeBonus)
	if accountServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", accountServiceErr.Error())
	}

	walletService, walletServiceErr := NewWalletService(unitOfWork, args.CreatorSharePercent)
	if walletServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", walletServiceErr.Error())
	}

	settlementService, settlementServiceErr := NewSettlementService(unitOfWork, args.Gateway, args.OrderSecret)
	if settlementServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", settlementServiceErr.Error())
	}

	return &AppServices{
		AccountService:    accountService,
		WalletService:     walletService,
		SettlementService: settlementService,
		PayoutService:     NewPayoutService(unitOfWork),
	}, nil
}
