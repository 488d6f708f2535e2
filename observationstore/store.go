// Package observationstore implements component F of the design: the
// logical store that ties datastore.DataStore, rowkey, obsproto, and
// profile together into AddObservationBatch, QueryObservations, and
// DeleteAllForMetric.
package observationstore

import (
	"context"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/cobalt-telemetry/observationstore/datastore"
	"github.com/cobalt-telemetry/observationstore/obsproto"
	"github.com/cobalt-telemetry/observationstore/profile"
	"github.com/cobalt-telemetry/observationstore/rowkey"
)

const (
	columnObservation   = "observation"
	columnSystemProfile = "system_profile"
)

// ObservationMetadata is the shared header for a written batch and the
// per-result header a query returns. SystemProfile is nil iff the batch was
// written without one (or, on a query result, iff the row had none or none
// was requested — see QueryObservations's doc comment).
type ObservationMetadata struct {
	CustomerID    uint32
	ProjectID     uint32
	MetricID      uint32
	DayIndex      uint32
	SystemProfile *obsproto.SystemProfile
}

// HasSystemProfile reports spec.md §8's "metadata.has_system_profile".
func (m ObservationMetadata) HasSystemProfile() bool { return m.SystemProfile != nil }

// QueryResult is one row of a QueryResponse.
type QueryResult struct {
	Metadata    ObservationMetadata
	Observation obsproto.Observation
}

// QueryResponse is the result of QueryObservations.
type QueryResponse struct {
	Status          datastore.Status
	Results         []QueryResult
	PaginationToken string
}

// Store is the logical ObservationStore. It holds no mutable state of its
// own beyond an IDGenerator for fresh row keys; concurrency safety reduces
// entirely to the wrapped DataStore's (spec.md §5).
type Store struct {
	ds  datastore.DataStore
	ids *rowkey.IDGenerator
}

// New wraps ds as an ObservationStore.
func New(ds datastore.DataStore) *Store {
	return &Store{ds: ds, ids: rowkey.NewIDGenerator()}
}

// AddObservationBatch implements spec.md §4.F.1.
func (s *Store) AddObservationBatch(ctx context.Context, metadata ObservationMetadata, observations []obsproto.Observation) datastore.Status {
	if metadata.CustomerID == 0 || metadata.ProjectID == 0 || metadata.MetricID == 0 {
		return datastore.StatusInvalidArguments
	}
	if len(observations) == 0 {
		return datastore.StatusOK
	}

	var profileBytes []byte
	if metadata.SystemProfile != nil {
		profileBytes = obsproto.EncodeSystemProfile(*metadata.SystemProfile)
	}

	rows := make([]datastore.Row, 0, len(observations))
	for _, obs := range observations {
		key := rowkey.Encode(rowkey.Key{
			CustomerID: metadata.CustomerID,
			ProjectID:  metadata.ProjectID,
			MetricID:   metadata.MetricID,
			DayIndex:   metadata.DayIndex,
			ArrivalID:  s.ids.NextArrivalID(),
			RandomID:   rowkey.NextRandomID(),
		})
		columns := datastore.Columns{columnObservation: obsproto.EncodeObservation(obs)}
		if profileBytes != nil {
			columns[columnSystemProfile] = profileBytes
		}
		rows = append(rows, datastore.Row{Key: key, Columns: columns})
	}

	return s.ds.WriteRows(ctx, datastore.TableObservations, rows)
}

// QueryObservations implements spec.md §4.F.2. requestedProfileFields
// selects which SystemProfile fields to project onto a result when the
// underlying row carries one (4.E); an empty set means no profile is ever
// attached, regardless of what was stored.
func (s *Store) QueryObservations(
	ctx context.Context,
	customerID, projectID, metricID uint32,
	firstDayIndex, lastDayIndex uint32,
	parts []string,
	requestedProfileFields []obsproto.SystemProfileField,
	maxResults int,
	paginationToken string,
) QueryResponse {
	if lastDayIndex < firstDayIndex {
		return QueryResponse{Status: datastore.StatusInvalidArguments}
	}

	startKey := rowkey.FirstKeyForDay(customerID, projectID, metricID, firstDayIndex)
	if paginationToken != "" {
		decoded, ok := rowkey.Decode(paginationToken)
		if !ok {
			return QueryResponse{Status: datastore.StatusInvalidArguments}
		}
		if decoded.DayIndex < firstDayIndex ||
			decoded.CustomerID != customerID || decoded.ProjectID != projectID || decoded.MetricID != metricID {
			return QueryResponse{Status: datastore.StatusInvalidArguments}
		}
		startKey = paginationToken
	}
	limitKey := rowkey.SuccessorPrefixForDay(customerID, projectID, metricID, lastDayIndex)

	rows, moreAvailable, status := s.ds.ReadRows(ctx, datastore.TableObservations, startKey, limitKey,
		[]string{columnObservation, columnSystemProfile}, maxResults)
	if status != datastore.StatusOK {
		return QueryResponse{Status: status}
	}

	results := make([]QueryResult, 0, len(rows))
	var lastKey string
	for _, row := range rows {
		lastKey = row.Key

		decodedKey, ok := rowkey.Decode(row.Key)
		if !ok {
			log.Error("observationstore: skipping row with undecodable key", "key", row.Key)
			datastore.RowsSkippedCorrupt.WithLabelValues(datastore.TableObservations, "undecodable_key").Inc()
			continue
		}

		obsBytes, ok := row.Columns[columnObservation]
		if !ok {
			log.Error("observationstore: skipping row with no observation column", "key", row.Key)
			datastore.RowsSkippedCorrupt.WithLabelValues(datastore.TableObservations, "missing_observation_column").Inc()
			continue
		}
		obs, err := obsproto.DecodeObservation(obsBytes)
		if err != nil {
			log.Error("observationstore: skipping row with corrupt observation", "key", row.Key, "err", err)
			datastore.RowsSkippedCorrupt.WithLabelValues(datastore.TableObservations, "corrupt_observation").Inc()
			continue
		}
		obs = obs.ProjectParts(parts)

		meta := ObservationMetadata{
			CustomerID: decodedKey.CustomerID,
			ProjectID:  decodedKey.ProjectID,
			MetricID:   decodedKey.MetricID,
			DayIndex:   decodedKey.DayIndex,
		}
		if profileBytes, hasProfile := row.Columns[columnSystemProfile]; hasProfile && len(requestedProfileFields) > 0 {
			full, err := obsproto.DecodeSystemProfile(profileBytes)
			if err != nil {
				log.Error("observationstore: skipping row with corrupt system_profile", "key", row.Key, "err", err)
				datastore.RowsSkippedCorrupt.WithLabelValues(datastore.TableObservations, "corrupt_system_profile").Inc()
				continue
			}
			projected := profile.Project(full, requestedProfileFields)
			meta.SystemProfile = &projected
		}

		results = append(results, QueryResult{Metadata: meta, Observation: obs})
	}

	paginationToken = ""
	if moreAvailable && lastKey != "" {
		lastDecoded, ok := rowkey.Decode(lastKey)
		if ok {
			paginationToken = rowkey.Encode(lastDecoded.Successor())
		}
	}

	return QueryResponse{Status: datastore.StatusOK, Results: results, PaginationToken: paginationToken}
}

// DeleteAllForMetric implements spec.md §4.F.3.
func (s *Store) DeleteAllForMetric(ctx context.Context, customerID, projectID, metricID uint32) datastore.Status {
	return s.ds.DeleteRowsWithPrefix(ctx, datastore.TableObservations, rowkey.PrefixCPM(customerID, projectID, metricID))
}

// DeleteAllRows truncates table. Admin-only, per spec.md §4.A's
// DeleteAllRows and §3's "destroyed by ... DeleteAllRows (table-wide,
// admin only)".
func (s *Store) DeleteAllRows(ctx context.Context, table string) datastore.Status {
	if table != datastore.TableObservations && table != datastore.TableReports {
		return datastore.StatusInvalidArguments
	}
	return s.ds.DeleteAllRows(ctx, table)
}
