package service

import (
	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/accounts"
	"github.com/fulldump/accountsdb/accountsdb"
	"github.com/fulldump/accountsdb/database"
)

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{
		db: db,
	}
}

func (s *Service) accounts() (*accounts.Accounts, error) {
	a := s.db.Accounts()
	if a == nil {
		return nil, ErrorUnavailable
	}
	return a, nil
}

func (s *Service) ListAccounts() ([]account.Pubkey, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	return a.Keys(), nil
}

func (s *Service) FindAccounts(filter func(id account.Pubkey, acc *account.Account) bool) ([]accountsdb.Entry, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	return a.FilteredAccounts(filter)
}

func (s *Service) GetAccount(id account.Pubkey) (*account.Account, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	acc, found, err := a.LoadSlow(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrorAccountNotFound
	}

	return acc, nil
}

func (s *Service) PutAccount(id account.Pubkey, acc *account.Account) error {

	a, err := s.accounts()
	if err != nil {
		return err
	}

	return a.StoreSlow(id, acc)
}

func (s *Service) GetState() (*State, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	return state(a)
}

func state(a *accounts.Accounts) (*State, error) {

	hash, err := a.HashInternalState()
	if err != nil {
		return nil, err
	}

	return &State{
		Depth:            a.Depth(),
		TransactionCount: a.TransactionCount(),
		Hash:             hash,
	}, nil
}

func (s *Service) Checkpoint() (*State, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	err = a.Checkpoint()
	if err != nil {
		return nil, err
	}

	return state(a)
}

func (s *Service) Rollback() (*State, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	err = a.Rollback()
	if err != nil {
		return nil, err
	}

	return state(a)
}

func (s *Service) Purge(depth int) (*State, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	err = a.Purge(depth)
	if err != nil {
		return nil, err
	}

	return state(a)
}

func (s *Service) GetStats() (*accountsdb.Stats, error) {

	a, err := s.accounts()
	if err != nil {
		return nil, err
	}

	stats := a.Stats()
	return &stats, nil
}
