package core

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
)

// value objects are persisted as json text columns

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return types.JSONText(b).Value()
}

func jsonScan(src, v interface{}) error {
	var text types.JSONText
	if err := text.Scan(src); err != nil {
		return err
	}

	return text.Unmarshal(v)
}
