package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/offer-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestRepository - интерфейс для работы с заявками на услуги.
type RequestRepository interface {
	CreateRequest(ctx context.Context, requestReq models.QuoteRequestRequest) (*models.QuoteRequest, error)
	GetRequestByID(ctx context.Context, requestID string) (*models.QuoteRequest, error)
	GetUserRequests(ctx context.Context, organizerID string, limit, offset int) ([]models.QuoteRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.QuoteRequest, error)
	RequestExists(ctx context.Context, requestID string) (bool, error)
	ProviderExists(ctx context.Context, providerID string) (bool, error)
}

// PostgresRequestRepository - реализация RequestRepository для базы данных.
type PostgresRequestRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRequestRepository создает новый экземпляр PostgresRequestRepository.
func NewPostgresRequestRepository(db *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

const requestColumns = `id, event_id, organizer_id, service_category, budget_min, budget_max,
       deadline, request_type, status, created_at`

func scanRequest(row offerRow) (*models.QuoteRequest, error) {
	var request models.QuoteRequest
	err := row.Scan(
		&request.ID,
		&request.EventID,
		&request.OrganizerID,
		&request.ServiceCategory,
		&request.BudgetMin,
		&request.BudgetMax,
		&request.Deadline,
		&request.RequestType,
		&request.Status,
		&request.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// CreateRequest создает новую заявку на услугу.
func (r *PostgresRequestRepository) CreateRequest(ctx context.Context, requestReq models.QuoteRequestRequest) (*models.QuoteRequest, error) {
	newRequest := models.QuoteRequest{
		ID:              uuid.New().String(),
		EventID:         requestReq.EventID,
		OrganizerID:     requestReq.OrganizerID,
		ServiceCategory: requestReq.ServiceCategory,
		BudgetMin:       requestReq.BudgetMin,
		BudgetMax:       requestReq.BudgetMax,
		Deadline:        requestReq.Deadline,
		RequestType:     requestReq.RequestType,
		Status:          models.OpenedRequest,
		CreatedAt:       time.Now().UTC(),
	}

	insertQuery := `INSERT INTO quote_requests (id, event_id, organizer_id, service_category, budget_min,
                       budget_max, deadline, request_type, status, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newRequest.ID,
		newRequest.EventID,
		newRequest.OrganizerID,
		newRequest.ServiceCategory,
		newRequest.BudgetMin,
		newRequest.BudgetMax,
		newRequest.Deadline,
		newRequest.RequestType,
		newRequest.Status,
		newRequest.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newRequest, nil
}

// GetRequestByID возвращает заявку по идентификатору.
func (r *PostgresRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*models.QuoteRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM quote_requests WHERE id = $1`
	request, err := scanRequest(r.DB.QueryRow(ctx, query, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("quote request not found")
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

// GetUserRequests возвращает список заявок организатора.
func (r *PostgresRequestRepository) GetUserRequests(ctx context.Context, organizerID string, limit, offset int) ([]models.QuoteRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM quote_requests
	          WHERE organizer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, organizerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.QuoteRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

// UpdateRequestStatus меняет статус заявки.
func (r *PostgresRequestRepository) UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.QuoteRequest, error) {
	updateQuery := `UPDATE quote_requests SET status = $1 WHERE id = $2 RETURNING ` + requestColumns
	request, err := scanRequest(r.DB.QueryRow(ctx, updateQuery, status, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("quote request not found")
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

// RequestExists проверяет, существует ли заявка.
func (r *PostgresRequestRepository) RequestExists(ctx context.Context, requestID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM quote_requests WHERE id = $1)`
	err := r.DB.QueryRow(ctx, query, requestID).Scan(&exists)
	return exists, err
}

// ProviderExists проверяет, существует ли поставщик.
func (r *PostgresRequestRepository) ProviderExists(ctx context.Context, providerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM providers WHERE id = $1)`
	err := r.DB.QueryRow(ctx, query, providerID).Scan(&exists)
	return exists, err
}
