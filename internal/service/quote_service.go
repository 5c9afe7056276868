package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"procomp-service/internal/cache"
	"procomp-service/internal/document"
	"procomp-service/internal/mailer"
	"procomp-service/internal/model"
	"procomp-service/internal/pricing"
	"procomp-service/internal/repository"
	"procomp-service/internal/token"
	apperrors "procomp-service/pkg/app_errors"
	"procomp-service/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// maxIdentifierAttempts 產生不重複報價編號的最大嘗試次數
const maxIdentifierAttempts = 5

// ExpiryScheduler 發出報價後安排到期處理
type ExpiryScheduler interface {
	Arm(ctx context.Context, ticketID int, dueAt time.Time) error
	Disarm(ctx context.Context, ticketID int) error
}

type QuoteService interface {
	// 發送報價：驗證 → 保留編號 → PDF → 交易內寫入並寄信 → 排程到期
	Issue(ctx context.Context, req model.IssueQuoteRequest) (*model.IssueQuoteResponse, error)
	// 接受報價：sent → process
	Accept(ctx context.Context, ticketID, customerID int, rawToken string) (*model.AcceptResult, error)
	// 拒絕報價：sent → closed，force=false 時需超過期限
	Reject(ctx context.Context, ticketID int, force bool) (bool, error)
	// 完工：process → closed，寄送發票並歸檔
	Complete(ctx context.Context, ticketID int) (*model.CompleteResult, error)
	ListTasks(ctx context.Context) ([]*model.TaskRow, error)
}

type QuoteServiceDeps struct {
	Quotes      repository.QuoteRepository
	Tickets     repository.TicketRepository
	Users       repository.UserRepository
	Billing     repository.BillingRepository
	Transactor  repository.Transactor
	Identifiers cache.IdentifierRegistry
	Signer      *token.AcceptSigner
	Renderer    document.Renderer
	Mailer      mailer.Mailer
	Scheduler   ExpiryScheduler
}

type QuoteServiceImpl struct {
	quotes      repository.QuoteRepository
	tickets     repository.TicketRepository
	users       repository.UserRepository
	billing     repository.BillingRepository
	transactor  repository.Transactor
	identifiers cache.IdentifierRegistry
	signer      *token.AcceptSigner
	renderer    document.Renderer
	mailer      mailer.Mailer
	scheduler   ExpiryScheduler

	window     time.Duration
	baseURL    string
	now        func() time.Time
	identifier pricing.IdentifierGenerator
}

func NewQuoteService(deps QuoteServiceDeps, window time.Duration, baseURL string) *QuoteServiceImpl {
	return &QuoteServiceImpl{
		quotes:      deps.Quotes,
		tickets:     deps.Tickets,
		users:       deps.Users,
		billing:     deps.Billing,
		transactor:  deps.Transactor,
		identifiers: deps.Identifiers,
		signer:      deps.Signer,
		renderer:    deps.Renderer,
		mailer:      deps.Mailer,
		scheduler:   deps.Scheduler,
		window:      window,
		baseURL:     baseURL,
		now:         time.Now,
		identifier:  pricing.GenerateIdentifier,
	}
}

// WithClock 替換時鐘 (測試用)
func (s *QuoteServiceImpl) WithClock(now func() time.Time) *QuoteServiceImpl {
	s.now = now
	return s
}

// WithIdentifierGenerator 替換編號產生器 (測試用)
func (s *QuoteServiceImpl) WithIdentifierGenerator(gen pricing.IdentifierGenerator) *QuoteServiceImpl {
	s.identifier = gen
	return s
}

func (s *QuoteServiceImpl) Issue(ctx context.Context, req model.IssueQuoteRequest) (*model.IssueQuoteResponse, error) {
	// 1. 驗證輸入，失敗時不寫入任何東西
	inputs, err := pricing.ParseInputs(string(req.LaborHours), string(req.LaborRate), string(req.MaterialCost))
	if err != nil {
		return nil, err
	}
	delivery, err := parseDeliveryDate(req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	totals := pricing.Calculate(inputs)

	// 2. 客戶與送修單
	customer, err := s.users.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.FindByID(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != customer.ID {
		return nil, apperrors.ErrTicketNotFound
	}

	// 3. 同一張送修單只能有一筆進行中的報價
	latest, err := s.quotes.FindLatestByTicketID(ctx, ticket.ID)
	if err != nil && !errors.Is(err, apperrors.ErrQuoteNotFound) {
		return nil, err
	}
	if latest != nil && latest.State.IsLive() {
		return nil, apperrors.ErrQuoteActive
	}

	// 4. 保留編號
	now := s.now()
	identifier, err := s.reserveIdentifier(ctx, ticket.ID, now)
	if err != nil {
		return nil, err
	}
	release := func() {
		// ctx 可能已被取消，釋放必須執行
		if err := s.identifiers.Release(context.Background(), identifier, ticket.ID); err != nil {
			logger.WithComponent("service").Warn("release identifier failed",
				zap.Int("ticket_id", ticket.ID), zap.String("identifier", identifier), zap.Error(err))
		}
	}

	expiresAt := now.Add(s.window)
	acceptToken, err := s.signer.Sign(ticket.ID, customer.ID, identifier, now, expiresAt)
	if err != nil {
		release()
		return nil, s.dependencyFailure(apperrors.StageRender, ticket.ID, err)
	}

	// 5. PDF
	pdf, err := s.renderer.RenderQuote(document.QuoteDocument{
		Identifier:    identifier,
		CustomerEmail: customer.Email,
		IssuedAt:      now,
		ExpiresAt:     expiresAt,
		Inputs:        inputs,
		Totals:        totals,
	})
	if err != nil {
		release()
		return nil, s.dependencyFailure(apperrors.StageRender, ticket.ID, err)
	}

	// 6. 交易內先寫入再寄信，寄信失敗則回滾；
	// 並行的第二筆寫入會等唯一索引並得到 ErrQuoteActive
	var operatorID *int
	if req.OperatorID > 0 {
		operatorID = &req.OperatorID
	}
	link := s.acceptLink(ticket.ID, customer.ID, acceptToken)
	var mailErr error
	err = s.transactor.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.quotes.Create(ctx, tx, &model.QuoteItem{
			TicketID:            ticket.ID,
			CategoryID:          req.CategoryID,
			OperatorID:          operatorID,
			Name:                "Árajánlat",
			Identifier:          identifier,
			State:               model.QuoteStateSent,
			LaborHours:          inputs.LaborHours,
			LaborRate:           inputs.LaborRate,
			MaterialCost:        inputs.MaterialCost,
			NetTotal:            totals.Net,
			GrossTotal:          totals.Gross,
			CreatedAt:           now,
			ScheduledDeliveryAt: delivery,
		}); err != nil {
			return err
		}

		// 7. 郵件，失敗則整個操作中止
		mailErr = s.mailer.Send(ctx, mailer.Message{
			To:      customer.Email,
			Subject: "Árajánlat",
			HTML: fmt.Sprintf(`<p>Kedves Ügyfelünk!</p>
<p>Csatolva találja az Ön részére készült <b>árajánlatot</b> (azonosító: <b>%s</b>).</p>
<p>Elfogadás: <a href="%s">%s</a></p>
<p>Ha %d perc alatt nem fogadja el, akkor automatikusan törlődik és elutasítjuk az ajánlatot.</p>
<p>Üdvözlettel,<br><b>PROCOMP Szerviz</b></p>`,
				identifier, html.EscapeString(link), html.EscapeString(link), int(s.window.Minutes())),
			Attachments: []mailer.Attachment{{Filename: "arajanlat.pdf", Content: pdf}},
		})
		return mailErr
	})
	if err != nil {
		release()
		switch {
		case errors.Is(err, apperrors.ErrQuoteActive):
			logger.WithComponent("service").Info("concurrent issue lost on insert",
				zap.Int("ticket_id", ticket.ID), zap.String("identifier", identifier))
			return nil, err
		case mailErr != nil:
			return nil, s.dependencyFailure(apperrors.StageNotify, ticket.ID, mailErr)
		}
		// 寫入或 commit 失敗
		return nil, s.dependencyFailure(apperrors.StagePersist, ticket.ID, err)
	}

	// 8. 排程到期；失敗只記錄，資料庫掃描仍會處理
	if err := s.scheduler.Arm(ctx, ticket.ID, expiresAt); err != nil {
		logger.WithComponent("service").Error("arm expiry failed",
			zap.Int("ticket_id", ticket.ID), zap.String("stage", apperrors.StageSchedule), zap.Error(err))
	}

	logger.WithComponent("service").Info("quote issued",
		zap.Int("ticket_id", ticket.ID),
		zap.String("identifier", identifier),
		zap.String("gross", totals.Gross.String()),
	)

	return &model.IssueQuoteResponse{
		Message:    "Árajánlat elküldve PDF-ben",
		Identifier: identifier,
		Net:        totals.Net,
		Tax:        totals.Tax,
		Gross:      totals.Gross,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *QuoteServiceImpl) reserveIdentifier(ctx context.Context, ticketID int, now time.Time) (string, error) {
	for attempt := 0; attempt < maxIdentifierAttempts; attempt++ {
		candidate := s.identifier(now)
		ok, err := s.identifiers.Reserve(ctx, candidate, ticketID)
		if err != nil {
			return "", s.dependencyFailure(apperrors.StagePersist, ticketID, err)
		}
		if ok {
			return candidate, nil
		}
	}
	return "", apperrors.ErrIdentifierExhausted
}

func (s *QuoteServiceImpl) acceptLink(ticketID, customerID int, acceptToken string) string {
	return fmt.Sprintf("%s/api/users/tasks/accept/%d/%d?token=%s", s.baseURL, ticketID, customerID, acceptToken)
}

func (s *QuoteServiceImpl) Accept(ctx context.Context, ticketID, customerID int, rawToken string) (*model.AcceptResult, error) {
	claims, err := s.signer.Verify(rawToken, ticketID, customerID)
	if err != nil {
		return nil, err
	}

	// 連結綁定報價編號，舊報價的連結不能接受新報價
	item, ok, err := s.quotes.TransitionLatest(ctx, ticketID, claims.Identifier, time.Time{}, model.QuoteStateSent, model.QuoteStateProcess, s.now())
	if err != nil {
		return nil, err
	}
	if ok {
		if err := s.scheduler.Disarm(ctx, ticketID); err != nil {
			logger.WithComponent("service").Warn("disarm expiry failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		}
		logger.WithComponent("service").Info("quote accepted", zap.Int("ticket_id", ticketID), zap.String("identifier", item.Identifier))
		return &model.AcceptResult{Identifier: item.Identifier, State: item.State}, nil
	}

	// 沒搶到：確認目前狀態
	latest, err := s.quotes.FindLatestByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	// 編號不同代表連結屬於已結束的舊報價
	if latest.State == model.QuoteStateProcess && latest.Identifier == claims.Identifier {
		return &model.AcceptResult{Identifier: latest.Identifier, State: latest.State, AlreadyAccepted: true}, nil
	}

	return nil, apperrors.ErrQuoteAlreadyResolved
}

func (s *QuoteServiceImpl) Reject(ctx context.Context, ticketID int, force bool) (bool, error) {
	latest, err := s.quotes.FindLatestByTicketID(ctx, ticketID)
	if err != nil {
		return false, err
	}
	if latest.State != model.QuoteStateSent {
		return false, nil
	}
	now := s.now()
	if !force && !latest.IsExpired(now, s.window) {
		return false, nil
	}

	// 鎖定讀到的那一筆：讀取與更新之間可能已換成新報價
	var cutoff time.Time
	if !force {
		cutoff = now.Add(-s.window)
	}
	_, ok, err := s.quotes.TransitionLatest(ctx, ticketID, latest.Identifier, cutoff, model.QuoteStateSent, model.QuoteStateClosed, now)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if force {
		logger.WithComponent("service").Info("quote rejected manually", zap.Int("ticket_id", ticketID))
		if err := s.scheduler.Disarm(ctx, ticketID); err != nil {
			logger.WithComponent("service").Warn("disarm expiry failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		}
	} else {
		logger.WithComponent("service").Info("quote expired", zap.Int("ticket_id", ticketID), zap.Duration("window", s.window))
	}

	return true, nil
}

func (s *QuoteServiceImpl) Complete(ctx context.Context, ticketID int) (*model.CompleteResult, error) {
	view, err := s.quotes.FindCompletionView(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if view.Item.State != model.QuoteStateProcess {
		return nil, apperrors.ErrQuoteNotFound
	}

	// 重新計算，不信任先前存下的總額
	inputs := pricing.Inputs{
		LaborHours:   view.Item.LaborHours,
		LaborRate:    view.Item.LaborRate,
		MaterialCost: view.Item.MaterialCost,
	}
	totals := pricing.Calculate(inputs)
	now := s.now()

	pdf, err := s.renderer.RenderInvoice(document.InvoiceDocument{
		Identifier:    view.Item.Identifier,
		CustomerName:  view.CustomerName,
		CustomerEmail: view.CustomerEmail,
		CustomerPhone: view.CustomerPhone,
		IssuedAt:      now,
		Inputs:        inputs,
		Totals:        totals,
	})
	if err != nil {
		return nil, s.dependencyFailure(apperrors.StageRender, ticketID, err)
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      view.CustomerEmail,
		Subject: "Számla elkészült",
		HTML: fmt.Sprintf(`<p>Kedves %s,</p>
<p>A javítás elkészült. Mellékelve találja a számlát PDF formátumban (azonosító: <b>%s</b>).</p>
<p>Üdvözlettel,<br><b>PROCOMP Szerviz</b></p>`, html.EscapeString(view.CustomerName), view.Item.Identifier),
		Attachments: []mailer.Attachment{{Filename: "szamla.pdf", Content: pdf}},
	})
	if err != nil {
		return nil, s.dependencyFailure(apperrors.StageNotify, ticketID, err)
	}

	deliveryDate := now
	if view.Item.ScheduledDeliveryAt != nil {
		deliveryDate = *view.Item.ScheduledDeliveryAt
	}

	var closed bool
	err = s.transactor.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.billing.Archive(ctx, tx, &model.BillingRecord{
			TicketID:       ticketID,
			Identifier:     view.Item.Identifier,
			PaymentMethod:  view.PaymentMethod,
			ShippingMethod: view.ShippingMethod,
			DeliveryDate:   deliveryDate,
			GrossTotal:     totals.Gross,
			Phone:          view.CustomerPhone,
			ArchivedAt:     now,
		}); err != nil {
			return err
		}

		ok, err := s.quotes.CloseProcessed(ctx, tx, view.Item.ID, totals, now)
		if err != nil {
			return err
		}
		closed = ok
		return nil
	})
	if err != nil {
		return nil, s.dependencyFailure(apperrors.StageArchive, ticketID, err)
	}
	if !closed {
		// 另一個請求已經完成
		return nil, apperrors.ErrQuoteAlreadyResolved
	}

	logger.WithComponent("service").Info("quote completed",
		zap.Int("ticket_id", ticketID),
		zap.String("identifier", view.Item.Identifier),
		zap.String("gross", totals.Gross.String()),
	)

	return &model.CompleteResult{
		Message:    "Feladat befejezve, PDF számla elküldve",
		Identifier: view.Item.Identifier,
		Net:        totals.Net,
		Tax:        totals.Tax,
		Gross:      totals.Gross,
	}, nil
}

func (s *QuoteServiceImpl) ListTasks(ctx context.Context) ([]*model.TaskRow, error) {
	return s.quotes.ListTasks(ctx)
}

func (s *QuoteServiceImpl) dependencyFailure(stage string, ticketID int, err error) error {
	logger.WithComponent("service").Error("dependency failure",
		zap.Int("ticket_id", ticketID),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return apperrors.NewDependencyError(stage, ticketID, err)
}

func parseDeliveryDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("scheduled_delivery_at", "must be YYYY-MM-DD")
}
