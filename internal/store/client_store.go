package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type ClientStore struct {
	db DB
}

type Client struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var ErrClientNotFound = errors.New("client not found")

func NewClientStore(db DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) Create(ctx context.Context, tx Execer, client Client) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO clients (id, first_name, last_name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, client.ID, client.FirstName, client.LastName, client.Email, client.Phone, client.Address, client.CreatedAt)
	return err
}

func (s *ClientStore) GetByID(ctx context.Context, clientID string) (Client, error) {
	var row Client
	err := s.db.GetContext(ctx, &row, `
		SELECT id, first_name, last_name, email, phone, address, created_at
		FROM clients
		WHERE id = $1
	`, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, ErrClientNotFound
	}
	if err != nil {
		return Client{}, err
	}
	return row, nil
}

func (s *ClientStore) List(ctx context.Context) ([]Client, error) {
	var rows []Client
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, first_name, last_name, email, phone, address, created_at
		FROM clients
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
