package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// FindDuplicateGroups groups visible postings by normalized (title, company).
// The primary of a group is its highest-scored member, ties going to the
// earliest first_seen. Groups are ordered by primary score.
func (s *Store) FindDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := s.readDB.QueryContext(ctx, "SELECT "+postingColumns+" FROM postings WHERE hidden = 0")
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	byKey := make(map[string][]job.Posting)
	var order []string
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		k := p.Key()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []DuplicateGroup
	for _, k := range order {
		members := byKey[k]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			a, b := members[i], members[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if !a.FirstSeen.Equal(b.FirstSeen) {
				return a.FirstSeen.Before(b.FirstSeen)
			}
			return a.Hash < b.Hash
		})
		groups = append(groups, DuplicateGroup{Key: k, Primary: members[0], Members: members})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Primary.Score > groups[j].Primary.Score
	})
	return groups, nil
}

// MergeGroup hides every non-primary member of g and returns how many rows
// changed. Unhiding reverses it.
func (s *Store) MergeGroup(ctx context.Context, g DuplicateGroup) (int, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning merge: %w", err)
	}
	defer tx.Rollback()

	hidden := 0
	for _, m := range g.Others() {
		res, err := tx.ExecContext(ctx, "UPDATE postings SET hidden = 1 WHERE hash = ? AND hidden = 0", m.Hash)
		if err != nil {
			return 0, fmt.Errorf("hiding %s: %w", m.Hash, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("hiding %s: %w", m.Hash, err)
		}
		hidden += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing merge: %w", err)
	}
	return hidden, nil
}
