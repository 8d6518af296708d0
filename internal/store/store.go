package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db        *sql.DB
	dashboard *DashboardStore
	chart     *ChartStore
	selector  *SelectorStore
	mapping   *MappingStore
	dataset   *DatasetStore
}

func NewStore(db *sql.DB) *Store {
	qi := newQueryInterceptor(db)
	return &Store{
		db:        db,
		dashboard: NewDashboardStore(qi),
		chart:     NewChartStore(qi),
		selector:  NewSelectorStore(qi),
		mapping:   NewMappingStore(qi),
		dataset:   NewDatasetStore(qi),
	}
}

func (s *Store) Dashboard() *DashboardStore {
	return s.dashboard
}

func (s *Store) Chart() *ChartStore {
	return s.chart
}

func (s *Store) Selector() *SelectorStore {
	return s.selector
}

func (s *Store) Mapping() *MappingStore {
	return s.mapping
}

func (s *Store) Dataset() *DatasetStore {
	return s.dataset
}

func (s *Store) Close() error {
	return s.db.Close()
}
