package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/offer-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OfferRepository - интерфейс для работы с предложениями.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error)
	GetOfferByID(ctx context.Context, offerID string) (*models.Offer, error)
	GetUserOffers(ctx context.Context, userID string, role models.Party, limit, offset int) ([]models.Offer, error)
	GetRequestOffers(ctx context.Context, requestID string) ([]models.Offer, error)
	HasLiveOffer(ctx context.Context, requestID, providerID string) (bool, error)
	UpdateOffer(ctx context.Context, offer *models.Offer, expectedVersion int32) (*models.Offer, error)
	AcceptOfferTx(ctx context.Context, accepted *models.Offer, expectedVersion int32) (*models.Offer, error)
	GetProviders(ctx context.Context, providerIDs []string) (map[string]models.Provider, error)
	ExpireDueOffers(ctx context.Context) (int64, error)
}

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOfferRepository создает новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db *pgxpool.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

const offerColumns = `id, quote_request_id, provider_id, organizer_id, status, amount, counter_offer,
       final_amount, delivery_days, inclusions, exclusions, valid_until, history, version, created_at, updated_at`

// liveStatuses - нетерминальные статусы предложения.
const liveStatuses = `'pending', 'quoted', 'counter_offered'`

type offerRow interface {
	Scan(dest ...interface{}) error
}

// scanOffer разбирает строку предложения, включая jsonb-поля.
func scanOffer(row offerRow) (*models.Offer, error) {
	var (
		offer        models.Offer
		counterBytes []byte
		historyBytes []byte
	)
	err := row.Scan(
		&offer.ID,
		&offer.QuoteRequestID,
		&offer.ProviderID,
		&offer.OrganizerID,
		&offer.Status,
		&offer.Amount,
		&counterBytes,
		&offer.FinalAmount,
		&offer.DeliveryDays,
		&offer.Inclusions,
		&offer.Exclusions,
		&offer.ValidUntil,
		&historyBytes,
		&offer.Version,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if counterBytes != nil {
		var counter models.CounterOffer
		if err := json.Unmarshal(counterBytes, &counter); err != nil {
			return nil, fmt.Errorf("unmarshal counter_offer: %w", err)
		}
		offer.CounterOffer = &counter
	}
	if err := json.Unmarshal(historyBytes, &offer.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return &offer, nil
}

// marshalCounter сериализует встречное предложение для jsonb-колонки.
func marshalCounter(counter *models.CounterOffer) ([]byte, error) {
	if counter == nil {
		return nil, nil
	}
	return json.Marshal(counter)
}

// CreateOffer создает новое предложение в статусе pending.
func (r *PostgresOfferRepository) CreateOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error) {
	newOffer := models.Offer{
		ID:             uuid.New().String(),
		QuoteRequestID: offerReq.QuoteRequestID,
		ProviderID:     offerReq.ProviderID,
		OrganizerID:    offerReq.OrganizerID,
		Status:         models.PendingOffer,
		Amount:         offerReq.Amount,
		DeliveryDays:   offerReq.DeliveryDays,
		History:        []models.HistoryEntry{},
		Version:        1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	insertQuery := `INSERT INTO offers (id, quote_request_id, provider_id, organizer_id, status, amount,
                       delivery_days, history, version, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb, $8, $9, $10)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newOffer.ID,
		newOffer.QuoteRequestID,
		newOffer.ProviderID,
		newOffer.OrganizerID,
		newOffer.Status,
		newOffer.Amount,
		newOffer.DeliveryDays,
		newOffer.Version,
		newOffer.CreatedAt,
		newOffer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &newOffer, nil
}

// GetOfferByID возвращает предложение по идентификатору.
func (r *PostgresOfferRepository) GetOfferByID(ctx context.Context, offerID string) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	offer, err := scanOffer(r.DB.QueryRow(ctx, query, offerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("offer not found")
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// GetUserOffers возвращает список предложений пользователя в указанной роли.
func (r *PostgresOfferRepository) GetUserOffers(ctx context.Context, userID string, role models.Party, limit, offset int) ([]models.Offer, error) {
	column := "provider_id"
	if role == models.Organizer {
		column = "organizer_id"
	}
	query := fmt.Sprintf(`SELECT %s FROM offers WHERE %s = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`, offerColumns, column)

	rows, err := r.DB.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

// GetRequestOffers возвращает все предложения по заявке.
func (r *PostgresOfferRepository) GetRequestOffers(ctx context.Context, requestID string) ([]models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE quote_request_id = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

// HasLiveOffer проверяет, есть ли у поставщика нетерминальное предложение по заявке.
func (r *PostgresOfferRepository) HasLiveOffer(ctx context.Context, requestID, providerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM offers
	          WHERE quote_request_id = $1 AND provider_id = $2 AND status IN (` + liveStatuses + `))`
	err := r.DB.QueryRow(ctx, query, requestID, providerID).Scan(&exists)
	return exists, err
}

// UpdateOffer записывает новое состояние предложения, используя поле version
// как оптимистическую блокировку. Запись проходит только если версия в базе
// совпадает с версией, прочитанной в начале операции.
func (r *PostgresOfferRepository) UpdateOffer(ctx context.Context, offer *models.Offer, expectedVersion int32) (*models.Offer, error) {
	counterBytes, err := marshalCounter(offer.CounterOffer)
	if err != nil {
		return nil, err
	}
	historyBytes, err := json.Marshal(offer.History)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE offers
		SET status = $2, amount = $3, counter_offer = $4, final_amount = $5, delivery_days = $6,
		    inclusions = $7, exclusions = $8, valid_until = $9, history = $10,
		    version = version + 1, updated_at = $11
		WHERE id = $1 AND version = $12
		RETURNING ` + offerColumns
	updated, err := scanOffer(r.DB.QueryRow(
		ctx,
		updateQuery,
		offer.ID,
		offer.Status,
		offer.Amount,
		counterBytes,
		offer.FinalAmount,
		offer.DeliveryDays,
		offer.Inclusions,
		offer.Exclusions,
		offer.ValidUntil,
		historyBytes,
		time.Now().UTC(),
		expectedVersion,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.versionConflict(ctx, offer.ID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// versionConflict различает конфликт версий и отсутствие предложения.
func (r *PostgresOfferRepository) versionConflict(ctx context.Context, offerID string) error {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM offers WHERE id = $1)`, offerID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("offer not found")
	}
	return models.NewConcurrencyConflictError("offer was modified concurrently, re-read and retry")
}

// AcceptOfferTx фиксирует принятие предложения одной транзакцией:
// целевое предложение переводится в accepted по оптимистической блокировке,
// все живые предложения той же заявки отклоняются с записью в истории,
// заявка помечается как awarded. Две принятые заявки по одной заявке
// невозможны: конкурирующая запись получает конфликт версии ещё до
// изменения соседей.
func (r *PostgresOfferRepository) AcceptOfferTx(ctx context.Context, accepted *models.Offer, expectedVersion int32) (*models.Offer, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	counterBytes, err := marshalCounter(accepted.CounterOffer)
	if err != nil {
		return nil, err
	}
	historyBytes, err := json.Marshal(accepted.History)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updateQuery := `
		UPDATE offers
		SET status = $2, counter_offer = $3, final_amount = $4, history = $5,
		    version = version + 1, updated_at = $6
		WHERE id = $1 AND version = $7
		RETURNING ` + offerColumns
	target, err := scanOffer(tx.QueryRow(
		ctx,
		updateQuery,
		accepted.ID,
		accepted.Status,
		counterBytes,
		accepted.FinalAmount,
		historyBytes,
		now,
		expectedVersion,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.versionConflict(ctx, accepted.ID)
	}
	if err != nil {
		return nil, err
	}

	siblingsQuery := `SELECT ` + offerColumns + ` FROM offers
	                  WHERE quote_request_id = $1 AND id <> $2 AND status IN (` + liveStatuses + `)
	                  FOR UPDATE`
	rows, err := tx.Query(ctx, siblingsQuery, accepted.QuoteRequestID, accepted.ID)
	if err != nil {
		return nil, err
	}
	var siblings []models.Offer
	for rows.Next() {
		sibling, err := scanOffer(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		siblings = append(siblings, *sibling)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sibling := range siblings {
		entry := models.HistoryEntry{
			ID:      uuid.New().String(),
			Type:    models.RejectedEntry,
			By:      models.Organizer,
			Date:    now,
			Message: fmt.Sprintf("auto-rejected: offer %s accepted", accepted.ID),
		}
		siblingHistory, err := json.Marshal(append(sibling.History, entry))
		if err != nil {
			return nil, err
		}
		rejectQuery := `UPDATE offers SET status = $2, history = $3, version = version + 1, updated_at = $4
		                WHERE id = $1`
		if _, err := tx.Exec(ctx, rejectQuery, sibling.ID, models.RejectedOffer, siblingHistory, now); err != nil {
			return nil, err
		}
	}

	awardQuery := `UPDATE quote_requests SET status = $1 WHERE id = $2`
	if _, err := tx.Exec(ctx, awardQuery, models.AwardedRequest, accepted.QuoteRequestID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return target, nil
}

// GetProviders возвращает профили поставщиков по списку идентификаторов.
func (r *PostgresOfferRepository) GetProviders(ctx context.Context, providerIDs []string) (map[string]models.Provider, error) {
	providers := make(map[string]models.Provider, len(providerIDs))
	if len(providerIDs) == 0 {
		return providers, nil
	}

	query := `SELECT id, name, rating, review_count, completed_jobs, verified, created_at
	          FROM providers WHERE id = ANY($1)`
	rows, err := r.DB.Query(ctx, query, providerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var provider models.Provider
		if err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&provider.Rating,
			&provider.ReviewCount,
			&provider.CompletedJobs,
			&provider.Verified,
			&provider.CreatedAt); err != nil {
			return nil, err
		}
		providers[provider.ID] = provider
	}
	return providers, rows.Err()
}

// ExpireDueOffers переводит в expired все живые предложения с истёкшим
// сроком действия, а также предложения по заявкам с прошедшим дедлайном.
// Запись об истечении дописывается в историю на стороне базы.
func (r *PostgresOfferRepository) ExpireDueOffers(ctx context.Context) (int64, error) {
	query := `
		UPDATE offers o
		SET status = 'expired',
		    history = o.history || jsonb_build_object(
		        'id', gen_random_uuid()::text,
		        'type', 'expired',
		        'by', 'organizer',
		        'date', to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'),
		        'message', 'offer expired'),
		    version = o.version + 1,
		    updated_at = now()
		WHERE o.status IN (` + liveStatuses + `)
		AND (
		    (o.valid_until IS NOT NULL AND o.valid_until < now())
		    OR EXISTS (SELECT 1 FROM quote_requests r WHERE r.id = o.quote_request_id AND r.deadline < now())
		)`
	tag, err := r.DB.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
