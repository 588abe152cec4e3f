package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/noloss/internal/client"
	"github.com/questx-lab/noloss/internal/common"
	"github.com/questx-lab/noloss/internal/entity"
	"github.com/questx-lab/noloss/internal/model"
	"github.com/questx-lab/noloss/internal/repository"
	"github.com/questx-lab/noloss/pkg/crypto"
	"github.com/questx-lab/noloss/pkg/enum"
	"github.com/questx-lab/noloss/pkg/errorx"
	"github.com/questx-lab/noloss/pkg/pubsub"
	"github.com/questx-lab/noloss/pkg/xcontext"
	"github.com/questx-lab/noloss/pkg/xredis"
	"gorm.io/gorm"
)

type LotteryDomain interface {
	Initialize(context.Context, *model.InitializeRequest) (*model.InitializeResponse, error)

	BuyTicket(context.Context, *model.BuyTicketRequest) (*model.BuyTicketResponse, error)
	RedeemTicket(context.Context, *model.RedeemTicketRequest) (*model.RedeemTicketResponse, error)
	DrawWinner(context.Context, *model.DrawWinnerRequest) (*model.DrawWinnerResponse, error)
	SetPhase(context.Context, *model.SetPhaseRequest) (*model.SetPhaseResponse, error)
	DepositToReserve(context.Context, *model.DepositToReserveRequest) (*model.DepositToReserveResponse, error)
	WithdrawFromReserve(context.Context, *model.WithdrawFromReserveRequest) (*model.WithdrawFromReserveResponse, error)
	ClaimEmissions(context.Context, *model.ClaimEmissionsRequest) (*model.ClaimEmissionsResponse, error)

	GetState(context.Context, *model.GetStateRequest) (*model.GetStateResponse, error)
	GetTicketPrice(context.Context, *model.GetTicketPriceRequest) (*model.GetTicketPriceResponse, error)
	GetUserTickets(context.Context, *model.GetUserTicketsRequest) (*model.GetUserTicketsResponse, error)
	GetPhaseStartHeight(context.Context, *model.GetPhaseStartHeightRequest) (*model.GetPhaseStartHeightResponse, error)
	GetAdmin(context.Context, *model.GetAdminRequest) (*model.GetAdminResponse, error)
	GetPoolBalance(context.Context, *model.GetPoolBalanceRequest) (*model.GetPoolBalanceResponse, error)
	GetCurrentLedger(context.Context, *model.GetCurrentLedgerRequest) (*model.GetCurrentLedgerResponse, error)
}

type lotteryDomain struct {
	// mutex serializes every invocation so that they never interleave.
	mutex sync.Mutex

	lotteryRepo      repository.LotteryRepository
	statusController StatusController
	ticketLedger     TicketLedger
	raffleEngine     RaffleEngine
	yieldBridge      YieldBridge
	adminVerifier    *common.AdminVerifier
	token            client.Token
	clock            client.Clock
	publisher        pubsub.Publisher
	redisClient      xredis.Client
}

func NewLotteryDomain(
	lotteryRepo repository.LotteryRepository,
	ticketRepo repository.TicketRepository,
	token client.Token,
	reserve client.Reserve,
	clock client.Clock,
	hasher crypto.SeedHasher,
	publisher pubsub.Publisher,
	redisClient xredis.Client,
) *lotteryDomain {
	statusController := NewStatusController(lotteryRepo, clock, hasher)
	principalVerifier := common.NewPrincipalVerifier()
	return &lotteryDomain{
		lotteryRepo:      lotteryRepo,
		statusController: statusController,
		ticketLedger:     NewTicketLedger(lotteryRepo, ticketRepo, statusController, token, principalVerifier),
		raffleEngine:     NewRaffleEngine(lotteryRepo, ticketRepo, statusController),
		yieldBridge:      NewYieldBridge(lotteryRepo, statusController, token, reserve),
		adminVerifier:    common.NewAdminVerifier(principalVerifier),
		token:            token,
		clock:            clock,
		publisher:        publisher,
		redisClient:      redisClient,
	}
}

func (d *lotteryDomain) Initialize(
	ctx context.Context, req *model.InitializeRequest,
) (*model.InitializeResponse, error) {
	currency, err := getCurrency(ctx)
	if err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, err = d.lotteryRepo.GetState(ctx)
	if err == nil {
		state, err := d.readState(ctx)
		if err != nil {
			return nil, err
		}

		return &model.InitializeResponse{State: state}, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get lottery state: %v", err)
		return nil, errorx.Unknown
	}

	height, err := d.clock.CurrentHeight(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current height: %v", err)
		return nil, errorx.Unknown
	}

	err = d.transact(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		if err := d.lotteryRepo.CreateState(ctx, entity.NewLotteryState(currency)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create lottery state: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.lotteryRepo.CreateRaffle(ctx, entity.NewRaffle()); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.lotteryRepo.CreateReservePosition(ctx, entity.NewReservePosition(currency)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create reserve position: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.lotteryRepo.UpsertTimelock(ctx, entity.BuyIn, height); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot record start of phase: %v", err)
			return nil, errorx.Unknown
		}

		return &model.LotteryEvent{Type: model.PhaseChangedEvent, Phase: string(entity.BuyIn)}, nil
	})
	if err != nil {
		return nil, err
	}

	state, err := d.readState(ctx)
	if err != nil {
		return nil, err
	}

	return &model.InitializeResponse{State: state}, nil
}

func (d *lotteryDomain) BuyTicket(
	ctx context.Context, req *model.BuyTicketRequest,
) (*model.BuyTicketResponse, error) {
	owner := xcontext.RequestUserID(ctx)
	if owner == "" {
		return nil, errorx.New(errorx.NotAuthorized, "Need a principal to buy a ticket")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var ticket *entity.Ticket
	err := d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		var err error
		ticket, err = d.ticketLedger.Buy(ctx, owner)
		if err != nil {
			return nil, err
		}

		return &model.LotteryEvent{
			Type:     model.TicketBoughtEvent,
			TicketID: ticket.ID,
			Amount:   ticket.Amount.String(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.BuyTicketResponse{Ticket: convertTicket(ticket)}, nil
}

func (d *lotteryDomain) RedeemTicket(
	ctx context.Context, req *model.RedeemTicketRequest,
) (*model.RedeemTicketResponse, error) {
	if xcontext.RequestUserID(ctx) == "" {
		return nil, errorx.New(errorx.NotAuthorized, "Need a principal to redeem a ticket")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var ticket *entity.Ticket
	err := d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		var err error
		ticket, err = d.ticketLedger.Redeem(ctx, req.TicketID)
		if err != nil {
			return nil, err
		}

		return &model.LotteryEvent{
			Type:     model.TicketRedeemedEvent,
			TicketID: ticket.ID,
			Amount:   ticket.Amount.String(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.RedeemTicketResponse{Amount: ticket.Amount.String()}, nil
}

func (d *lotteryDomain) DrawWinner(
	ctx context.Context, req *model.DrawWinnerRequest,
) (*model.DrawWinnerResponse, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var ticket *entity.Ticket
	err := d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		var err error
		ticket, err = d.raffleEngine.Draw(ctx)
		if err != nil {
			return nil, err
		}

		return &model.LotteryEvent{
			Type:     model.WinnerDrawnEvent,
			TicketID: ticket.ID,
			Amount:   ticket.Amount.String(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.DrawWinnerResponse{Ticket: convertTicket(ticket)}, nil
}

func (d *lotteryDomain) SetPhase(
	ctx context.Context, req *model.SetPhaseRequest,
) (*model.SetPhaseResponse, error) {
	phase, err := enum.ToEnum[entity.LotteryPhase](req.Phase)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid phase: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid phase %q, expected one of %v",
			req.Phase, enum.Values[entity.LotteryPhase]())
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	err = d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		if err := d.statusController.Transition(ctx, phase); err != nil {
			return nil, err
		}

		return &model.LotteryEvent{Type: model.PhaseChangedEvent, Phase: string(phase)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.SetPhaseResponse{Phase: string(phase)}, nil
}

func (d *lotteryDomain) DepositToReserve(
	ctx context.Context, req *model.DepositToReserveRequest,
) (*model.DepositToReserveResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var amount entity.Amount
	err := d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		var err error
		amount, err = d.yieldBridge.Deposit(ctx)
		if err != nil {
			return nil, err
		}

		return &model.LotteryEvent{Type: model.ReserveDepositedEvent, Amount: amount.String()}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.DepositToReserveResponse{Amount: amount.String()}, nil
}

func (d *lotteryDomain) WithdrawFromReserve(
	ctx context.Context, req *model.WithdrawFromReserveRequest,
) (*model.WithdrawFromReserveResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var yield entity.Amount
	err := d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		var err error
		yield, err = d.yieldBridge.Withdraw(ctx)
		if err != nil {
			return nil, err
		}

		return &model.LotteryEvent{Type: model.ReserveWithdrawnEvent, Amount: yield.String()}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.WithdrawFromReserveResponse{Yield: yield.String()}, nil
}

func (d *lotteryDomain) ClaimEmissions(
	ctx context.Context, req *model.ClaimEmissionsRequest,
) (*model.ClaimEmissionsResponse, error) {
	if err := d.verifyAdmin(ctx); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var claimed string
	err := d.execute(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		amount, err := d.yieldBridge.ClaimEmissions(ctx)
		if err != nil {
			return nil, err
		}

		claimed = amount.String()
		return &model.LotteryEvent{Type: model.EmissionsClaimedEvent, Amount: claimed}, nil
	})
	if err != nil {
		return nil, err
	}

	return &model.ClaimEmissionsResponse{Amount: claimed}, nil
}

func (d *lotteryDomain) GetState(
	ctx context.Context, req *model.GetStateRequest,
) (*model.GetStateResponse, error) {
	key := common.RedisKeyLotteryState(xcontext.Configs(ctx).Lottery.Currency)
	if d.redisClient != nil && !req.Fresh {
		var cached model.LotteryState
		err := d.redisClient.GetObj(ctx, key, &cached)
		if err == nil {
			return &model.GetStateResponse{State: cached}, nil
		}

		if !xredis.IsNil(err) {
			xcontext.Logger(ctx).Warnf("Cannot get cached lottery state: %v", err)
		}
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	state, err := d.readState(ctx)
	if err != nil {
		return nil, err
	}

	if d.redisClient != nil {
		ttl := xcontext.Configs(ctx).Redis.StateTTL
		if err := d.redisClient.SetObj(ctx, key, state, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache lottery state: %v", err)
		}
	}

	return &model.GetStateResponse{State: state}, nil
}

func (d *lotteryDomain) GetTicketPrice(
	ctx context.Context, req *model.GetTicketPriceRequest,
) (*model.GetTicketPriceResponse, error) {
	price, err := getTicketPrice(ctx)
	if err != nil {
		return nil, err
	}

	return &model.GetTicketPriceResponse{Price: price.String()}, nil
}

func (d *lotteryDomain) GetUserTickets(
	ctx context.Context, req *model.GetUserTicketsRequest,
) (*model.GetUserTicketsResponse, error) {
	owner := req.Owner
	if owner == "" {
		owner = xcontext.RequestUserID(ctx)
	}

	if owner == "" {
		return nil, errorx.New(errorx.BadRequest, "Need an owner")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	tickets, err := d.ticketLedger.ListFor(ctx, owner)
	if err != nil {
		return nil, err
	}

	result := []model.Ticket{}
	for ticket := range tickets {
		result = append(result, convertTicket(&ticket))
	}

	return &model.GetUserTicketsResponse{Tickets: result}, nil
}

func (d *lotteryDomain) GetPhaseStartHeight(
	ctx context.Context, req *model.GetPhaseStartHeightRequest,
) (*model.GetPhaseStartHeightResponse, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var phase entity.LotteryPhase
	if req.Phase == "" {
		var err error
		phase, err = d.statusController.CurrentPhase(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		phase, err = enum.ToEnum[entity.LotteryPhase](req.Phase)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid phase: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid phase %q, expected one of %v",
				req.Phase, enum.Values[entity.LotteryPhase]())
		}
	}

	height, err := d.statusController.PhaseStartHeight(ctx, phase)
	if err != nil {
		return nil, err
	}

	return &model.GetPhaseStartHeightResponse{Phase: string(phase), Height: height}, nil
}

func (d *lotteryDomain) GetAdmin(
	ctx context.Context, req *model.GetAdminRequest,
) (*model.GetAdminResponse, error) {
	admin := xcontext.Configs(ctx).Lottery.Admin
	if admin == "" {
		return nil, errorx.New(errorx.AdministratorNotFound, "Administrator is not configured")
	}

	return &model.GetAdminResponse{Admin: admin}, nil
}

func (d *lotteryDomain) GetPoolBalance(
	ctx context.Context, req *model.GetPoolBalanceRequest,
) (*model.GetPoolBalanceResponse, error) {
	pool, err := getPoolAddress(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := d.token.BalanceOf(ctx, pool)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pool balance: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot get the pool balance")
	}

	return &model.GetPoolBalanceResponse{Balance: balance.String()}, nil
}

func (d *lotteryDomain) GetCurrentLedger(
	ctx context.Context, req *model.GetCurrentLedgerRequest,
) (*model.GetCurrentLedgerResponse, error) {
	height, timestamp, err := d.clock.CurrentLedger(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current ledger: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetCurrentLedgerResponse{Height: height, Timestamp: timestamp}, nil
}

func (d *lotteryDomain) verifyAdmin(ctx context.Context) error {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		if errors.Is(err, common.ErrNoAdministrator) {
			return errorx.New(errorx.AdministratorNotFound, "Administrator is not configured")
		}

		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return errorx.New(errorx.NotAuthorized, "Only the administrator can do this")
	}

	return nil
}

// readState must be called with the mutex held.
func (d *lotteryDomain) readState(ctx context.Context) (model.LotteryState, error) {
	state, err := getState(ctx, d.lotteryRepo)
	if err != nil {
		return model.LotteryState{}, err
	}

	raffle, err := getRaffle(ctx, d.lotteryRepo)
	if err != nil {
		return model.LotteryState{}, err
	}

	startHeight, err := d.statusController.PhaseStartHeight(ctx, state.Phase)
	if err != nil {
		return model.LotteryState{}, err
	}

	remaining, err := d.statusController.RemainingLedgers(ctx)
	if err != nil {
		return model.LotteryState{}, err
	}

	return convertLotteryState(state, raffle, startHeight, remaining), nil
}

// execute runs fn in one database transaction holding the lock on the
// lottery state row, so invocations from other processes sharing the
// database wait until it commits. It must be called with the mutex held.
func (d *lotteryDomain) execute(
	ctx context.Context, fn func(context.Context) (*model.LotteryEvent, error),
) error {
	return d.transact(ctx, func(ctx context.Context) (*model.LotteryEvent, error) {
		if _, err := d.lotteryRepo.LockState(ctx); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.StateNotFound, "Lottery is not initialized")
			}

			xcontext.Logger(ctx).Errorf("Cannot lock lottery state: %v", err)
			return nil, errorx.Unknown
		}

		return fn(ctx)
	})
}

// transact runs fn in one database transaction. The event returned by fn is
// published after the commit.
func (d *lotteryDomain) transact(
	ctx context.Context, fn func(context.Context) (*model.LotteryEvent, error),
) error {
	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	event, err := fn(txCtx)
	if err != nil {
		return err
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return errorx.Unknown
	}

	d.afterCommit(ctx, event)
	return nil
}

func (d *lotteryDomain) afterCommit(ctx context.Context, event *model.LotteryEvent) {
	cfg := xcontext.Configs(ctx)
	if d.redisClient != nil {
		if err := d.redisClient.Del(ctx, common.RedisKeyLotteryState(cfg.Lottery.Currency)); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot invalidate cached lottery state: %v", err)
		}
	}

	if d.publisher == nil || event == nil {
		return
	}

	event.ID = uuid.NewString()
	event.Principal = xcontext.RequestUserID(ctx)
	event.CreatedAt = time.Now()

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal lottery event: %v", err)
		return
	}

	pack := &pubsub.Pack{Key: []byte(cfg.Lottery.Currency), Msg: b}
	if err := d.publisher.Publish(ctx, cfg.Kafka.Topic, pack); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish %s event: %v", event.Type, err)
	}
}
