package db

import (
	"errors"

	"github.com/lib/pq"
)

// 23505: unique_violation. The checkout gate leans on this to detect a lost
// race for the single pending-intent slot.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
