package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"tradebattle/internal/account"
	"tradebattle/internal/decision"
	"tradebattle/internal/logger"
	"tradebattle/internal/market"
	"tradebattle/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogProvider returns the instrument catalog used for the next round's
// markets. Hot-reloaded catalogs take effect at the following Setup.
type CatalogProvider func() []market.Spec

// OrchestratorConfig carries the match rules and the orchestrator's
// collaborators.
type OrchestratorConfig struct {
	MaxRounds       int
	RoundTicks      int
	TransitionTicks int
	// TickUnit is the countdown tick period (one second in production).
	TickUnit     time.Duration
	StartingCash decimal.Decimal
	Market       market.Config
	AIPollMin    time.Duration
	AIPollMax    time.Duration
	// AutoAdvance starts rounds after the first without an explicit signal.
	AutoAdvance bool
	Seed        int64

	Catalog  CatalogProvider
	Human    *decision.HumanSource
	AI       decision.Source
	Recorder store.Recorder
	Journal  store.TradeJournal
	// OnComplete runs after the session record is emitted (report writers).
	OnComplete func(store.SessionRecord)
}

func (c *OrchestratorConfig) validate() error {
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max rounds must be positive, got %d", c.MaxRounds)
	}
	if c.RoundTicks <= 0 {
		return fmt.Errorf("round duration must be positive, got %d ticks", c.RoundTicks)
	}
	if c.TransitionTicks <= 0 {
		return fmt.Errorf("transition duration must be positive, got %d ticks", c.TransitionTicks)
	}
	if c.TickUnit <= 0 {
		return fmt.Errorf("tick unit must be positive, got %s", c.TickUnit)
	}
	if !c.StartingCash.IsPositive() {
		return fmt.Errorf("starting cash must be positive, got %s", c.StartingCash)
	}
	if c.AIPollMin <= 0 || c.AIPollMax < c.AIPollMin {
		return fmt.Errorf("ai poll interval range [%s, %s] is invalid", c.AIPollMin, c.AIPollMax)
	}
	if c.Catalog == nil {
		return fmt.Errorf("catalog provider cannot be nil")
	}
	if c.Human == nil {
		return fmt.Errorf("human decision source cannot be nil")
	}
	if c.AI == nil {
		return fmt.Errorf("automated decision source cannot be nil")
	}
	return nil
}

type evKind int

const (
	evMarketTick evKind = iota
	evCountTick
	evPhaseExpire
	evAIPoll
)

// event is one timer delivery. epoch fences it to the phase that armed it;
// events from an exited phase are discarded.
type event struct {
	kind      evKind
	epoch     uint64
	remaining int
}

// Orchestrator runs the match state machine. All game state is owned by the
// Run loop goroutine: timers deliver events into it and public methods
// submit closures to it, so no state is ever touched concurrently.
type Orchestrator struct {
	cfg       OrchestratorConfig
	humanSrc  *decision.HumanSource
	aiSrc     decision.Source
	recorder  store.Recorder
	journal   store.TradeJournal
	countdown *RoundTimer

	events   chan event
	cmds     chan func()
	done     chan struct{}
	loopDone chan struct{}

	session     *Session
	epoch       uint64
	roundSpecs  []market.Spec
	mkt         *market.Market
	humanAcct   *account.Account
	aiAcct      *account.Account
	humanFinal  decimal.Decimal
	humanFrozen bool
	remaining   int
	totalTrades int
	finalRecord *store.SessionRecord

	marketStop chan struct{}
	aiStop     chan struct{}
}

func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	// Fail fast on an unusable catalog or market configuration.
	if _, err := market.New(cfg.Catalog(), cfg.Market); err != nil {
		return nil, err
	}
	countdown, err := NewRoundTimer(cfg.TickUnit)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:       cfg,
		humanSrc:  cfg.Human,
		aiSrc:     cfg.AI,
		recorder:  cfg.Recorder,
		journal:   cfg.Journal,
		countdown: countdown,
		events:    make(chan event, 128),
		cmds:      make(chan func(), 16),
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
		session:   newSession(uuid.NewString(), time.Now()),
	}, nil
}

// SessionID identifies this match.
func (o *Orchestrator) SessionID() string { return o.session.ID }

// Done closes when the match reaches MatchComplete.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Run drives the state machine until ctx is cancelled. The loop keeps
// serving state queries after MatchComplete.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer close(o.loopDone)
	o.enterSetup()
	for {
		select {
		case <-ctx.Done():
			o.cancelAll()
			return ctx.Err()
		case fn := <-o.cmds:
			fn()
		case ev := <-o.events:
			o.handle(ev)
		}
	}
}

// StartRound begins the human turn; valid only while the match sits in
// Setup.
func (o *Orchestrator) StartRound() error {
	return o.call(func() error {
		if o.session.Phase != PhaseSetup {
			return fmt.Errorf("round can only start from setup, current phase is %s", o.session.Phase)
		}
		return o.beginHumanTurn()
	})
}

// SubmitTrade enqueues a human trade request. Affordability is not checked
// here; the account rejects unaffordable trades at execution time.
func (o *Orchestrator) SubmitTrade(req decision.TradeRequest) error {
	return o.call(func() error {
		if o.session.Phase != PhaseHumanTurn {
			return fmt.Errorf("trades are only accepted during the human turn, current phase is %s", o.session.Phase)
		}
		return o.humanSrc.Enqueue(req)
	})
}

// State returns a point-in-time view of the match.
func (o *Orchestrator) State() (StateView, error) {
	var view StateView
	err := o.call(func() error {
		view = o.stateView()
		return nil
	})
	return view, err
}

var errStopped = errors.New("orchestrator is not running")

func (o *Orchestrator) call(fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case o.cmds <- func() { errCh <- fn() }:
	case <-o.loopDone:
		return errStopped
	}
	select {
	case err := <-errCh:
		return err
	case <-o.loopDone:
		return errStopped
	}
}

func (o *Orchestrator) post(ev event) {
	select {
	case o.events <- ev:
	default:
		logger.Debugf("battle event queue full, dropping %v event", ev.kind)
	}
}

func (o *Orchestrator) handle(ev event) {
	if ev.epoch != o.epoch {
		logger.Debugf("discarding stale event (epoch %d, current %d)", ev.epoch, o.epoch)
		return
	}
	switch ev.kind {
	case evCountTick:
		o.remaining = ev.remaining
	case evMarketTick:
		o.onMarketTick()
	case evAIPoll:
		o.onAIPoll()
	case evPhaseExpire:
		o.onPhaseExpire()
	}
}

func (o *Orchestrator) onMarketTick() {
	switch o.session.Phase {
	case PhaseHumanTurn:
		snap := o.mkt.Tick()
		action := o.humanSrc.Propose(snap, o.humanAcct)
		o.apply(action, o.humanAcct, snap)
	case PhaseAITurn:
		o.mkt.Tick()
	}
}

func (o *Orchestrator) onAIPoll() {
	if o.session.Phase != PhaseAITurn {
		return
	}
	snap := o.mkt.Snapshot()
	action := o.aiSrc.Propose(snap, o.aiAcct)
	o.apply(action, o.aiAcct, snap)
}

func (o *Orchestrator) onPhaseExpire() {
	switch o.session.Phase {
	case PhaseHumanTurn:
		o.freezeHumanTurn()
	case PhaseTransition:
		if err := o.beginAITurn(); err != nil {
			logger.Errorf("starting ai turn failed: %v", err)
		}
	case PhaseAITurn:
		o.resolveCurrentRound()
	}
}

func (o *Orchestrator) apply(action decision.Action, acct *account.Account, snap market.Snapshot) {
	if !action.IsTrade() {
		return
	}
	price, ok := snap.Price(action.Symbol)
	if !ok {
		logger.Warnf("%s proposed %s %s, unknown symbol", acct.Owner(), action.Kind, action.Symbol)
		return
	}
	var err error
	switch action.Kind {
	case decision.ActionBuy:
		_, err = acct.Buy(action.Symbol, action.Shares, price)
	case decision.ActionSell:
		_, err = acct.Sell(action.Symbol, action.Shares, price)
	}
	if err != nil {
		if errors.Is(err, account.ErrInsufficientFunds) || errors.Is(err, account.ErrInsufficientHoldings) {
			logger.Infof("%s trade rejected: %v", acct.Owner(), err)
		} else {
			logger.Warnf("%s trade failed: %v", acct.Owner(), err)
		}
		return
	}
	o.totalTrades++
	logger.Debugf("%s executed %s %d %s at %s", acct.Owner(), action.Kind, action.Shares, action.Symbol, price)
}

// enterSetup resets the round: every timer of the previous phase is
// cancelled before anything new is armed.
func (o *Orchestrator) enterSetup() {
	o.cancelAll()
	o.epoch++
	o.session.Phase = PhaseSetup
	o.remaining = 0
	o.humanFrozen = false
	o.humanSrc.Reset()

	o.roundSpecs = o.cfg.Catalog()
	o.humanAcct, _ = account.New("human", o.cfg.StartingCash)
	o.aiAcct, _ = account.New("ai", o.cfg.StartingCash)
	mkt, err := market.New(o.roundSpecs, o.marketConfig())
	if err != nil {
		// The constructor validated the initial catalog; only a bad hot
		// reload lands here. Keep the round un-startable and wait.
		logger.Errorf("round %d setup failed, market unavailable: %v", o.session.CurrentRound, err)
		o.mkt = nil
		return
	}
	o.mkt = mkt
	logger.Infof("round %d/%d ready (%d instruments)", o.session.CurrentRound, o.cfg.MaxRounds, len(o.roundSpecs))
}

func (o *Orchestrator) beginHumanTurn() error {
	if o.mkt == nil {
		return fmt.Errorf("round %d has no market, check the instrument catalog", o.session.CurrentRound)
	}
	o.cancelAll()
	o.epoch++
	o.session.Phase = PhaseHumanTurn
	o.remaining = o.cfg.RoundTicks
	o.armCountdown(o.cfg.RoundTicks)
	o.armMarketTicker()
	logger.Infof("round %d human turn started (%d ticks)", o.session.CurrentRound, o.cfg.RoundTicks)
	return nil
}

func (o *Orchestrator) freezeHumanTurn() {
	snap := o.mkt.Snapshot()
	o.humanFinal = o.humanAcct.TotalValue(snap)
	o.humanFrozen = true
	o.cancelAll()
	o.archiveTrades(o.humanAcct)
	logger.Infof("round %d human turn frozen at %s", o.session.CurrentRound, o.humanFinal)
	o.enterTransition()
}

func (o *Orchestrator) enterTransition() {
	o.cancelAll()
	o.epoch++
	o.session.Phase = PhaseTransition
	o.remaining = o.cfg.TransitionTicks
	o.armCountdown(o.cfg.TransitionTicks)
}

// beginAITurn simulates a trajectory independent of the human turn's: both
// traders race separately seeded markets and compare only final values.
func (o *Orchestrator) beginAITurn() error {
	o.cancelAll()
	o.epoch++
	mkt, err := market.New(o.roundSpecs, o.marketConfig())
	if err != nil {
		return err
	}
	o.mkt = mkt
	o.session.Phase = PhaseAITurn
	o.remaining = o.cfg.RoundTicks
	o.armCountdown(o.cfg.RoundTicks)
	o.armMarketTicker()
	o.armAIPoller()
	logger.Infof("round %d ai turn started (%d ticks)", o.session.CurrentRound, o.cfg.RoundTicks)
	return nil
}

func (o *Orchestrator) resolveCurrentRound() {
	aiFinal := o.aiAcct.TotalValue(o.mkt.Snapshot())
	o.cancelAll()
	o.archiveTrades(o.aiAcct)
	o.session.Phase = PhaseRoundResolved

	res := resolveRound(o.session.CurrentRound, o.humanFinal, aiFinal)
	o.session.record(res)
	logger.Infof("round %d resolved: human=%s ai=%s winner=%s (score %d-%d)",
		res.Round, res.HumanValue, res.AIValue, res.Winner, o.session.HumanWins, o.session.AIWins)

	if o.session.terminal(o.cfg.MaxRounds) {
		o.completeMatch()
		return
	}
	o.session.CurrentRound++
	o.enterSetup()
	if o.cfg.AutoAdvance {
		if err := o.beginHumanTurn(); err != nil {
			logger.Errorf("auto-starting round %d failed: %v", o.session.CurrentRound, err)
		}
	}
}

func (o *Orchestrator) completeMatch() {
	o.cancelAll()
	o.session.Phase = PhaseMatchComplete
	record := o.buildRecord()
	o.finalRecord = &record
	logger.Infof("match complete: winner=%s score %d-%d (%d rounds, %d trades)",
		record.Winner, record.HumanWins, record.AIWins, len(record.RoundResults), record.TotalTrades)
	close(o.done)

	// Session persistence is fire-and-forget: a sink failure is logged and
	// never blocks or desynchronizes the match.
	if o.recorder != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := o.recorder.Record(ctx, record); err != nil {
				logger.Errorf("recording session %s failed: %v", record.SessionID, err)
			}
		}()
	}
	if o.cfg.OnComplete != nil {
		go o.cfg.OnComplete(record)
	}
}

func (o *Orchestrator) buildRecord() store.SessionRecord {
	now := time.Now()
	record := store.SessionRecord{
		SessionID:   o.session.ID,
		StartedAt:   o.session.StartedAt,
		CompletedAt: now,
		DurationMs:  now.Sub(o.session.StartedAt).Milliseconds(),
		MaxRounds:   o.cfg.MaxRounds,
		HumanWins:   o.session.HumanWins,
		AIWins:      o.session.AIWins,
		Winner:      string(o.session.overallWinner()),
		HumanWon:    o.session.overallWinner() == WinnerHuman,
		TotalTrades: o.totalTrades,
	}
	var bestValue decimal.Decimal
	for _, res := range o.session.Results {
		record.RoundResults = append(record.RoundResults, store.RoundResult{
			Round:      res.Round,
			HumanValue: res.HumanValue,
			AIValue:    res.AIValue,
			Winner:     string(res.Winner),
		})
		record.FinalHumanScore = record.FinalHumanScore.Add(res.HumanValue)
		record.FinalAIScore = record.FinalAIScore.Add(res.AIValue)
		if record.BestRound == 0 || res.HumanValue.GreaterThan(bestValue) {
			record.BestRound = res.Round
			bestValue = res.HumanValue
		}
	}
	return record
}

func (o *Orchestrator) archiveTrades(acct *account.Account) {
	if o.journal == nil {
		return
	}
	trades := acct.Trades()
	if len(trades) == 0 {
		return
	}
	entries := make([]store.TradeEntry, 0, len(trades))
	for _, tr := range trades {
		entries = append(entries, store.TradeEntry{
			ID:         tr.ID,
			SessionID:  o.session.ID,
			Round:      o.session.CurrentRound,
			Owner:      acct.Owner(),
			Kind:       string(tr.Kind),
			Symbol:     tr.Symbol,
			Shares:     tr.Shares,
			Price:      tr.Price,
			ExecutedAt: tr.Timestamp,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := o.journal.AppendTrades(ctx, entries); err != nil {
			logger.Errorf("archiving %d trades for session %s failed: %v", len(entries), o.session.ID, err)
		}
	}()
}

func (o *Orchestrator) marketConfig() market.Config {
	cfg := o.cfg.Market
	if cfg.Seed != 0 {
		// Distinct deterministic trajectory per phase arming.
		cfg.Seed = cfg.Seed + int64(o.epoch)
	}
	return cfg
}

func (o *Orchestrator) armCountdown(ticks int) {
	epoch := o.epoch
	err := o.countdown.Start(ticks,
		func(remaining int) { o.post(event{kind: evCountTick, epoch: epoch, remaining: remaining}) },
		func() { o.post(event{kind: evPhaseExpire, epoch: epoch}) },
	)
	if err != nil {
		logger.Errorf("arming countdown failed: %v", err)
	}
}

func (o *Orchestrator) armMarketTicker() {
	epoch := o.epoch
	stop := make(chan struct{})
	o.marketStop = stop
	interval := o.mkt.TickInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				o.post(event{kind: evMarketTick, epoch: epoch})
			}
		}
	}()
}

func (o *Orchestrator) armAIPoller() {
	epoch := o.epoch
	stop := make(chan struct{})
	o.aiStop = stop
	seed := o.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed + int64(epoch)))
	minWait, maxWait := o.cfg.AIPollMin, o.cfg.AIPollMax
	go func() {
		for {
			wait := minWait
			if maxWait > minWait {
				wait += time.Duration(rng.Int63n(int64(maxWait - minWait)))
			}
			timer := time.NewTimer(wait)
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
				o.post(event{kind: evAIPoll, epoch: epoch})
			}
		}
	}()
}

// cancelAll stops every timer armed by the current phase. Phase transitions
// always cancel before arming, never the reverse.
func (o *Orchestrator) cancelAll() {
	o.countdown.Cancel()
	if o.marketStop != nil {
		close(o.marketStop)
		o.marketStop = nil
	}
	if o.aiStop != nil {
		close(o.aiStop)
		o.aiStop = nil
	}
}
