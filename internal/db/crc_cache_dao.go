package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
)

const crcCacheTableName = "file_crc_cache_tab"

var FileCRCCacheDao = newFileCRCCacheDao()

type fileCRCCacheDao struct {
	dbGetter DatabaseGetter
}

type CRCCacheEntry struct {
	Location string
}

func newFileCRCCacheDao() *fileCRCCacheDao {
	return &fileCRCCacheDao{
		dbGetter: defaultGetter,
	}
}

// Lookup returns the cached checksum for the location when the file
// modification time matches.
func (dao *fileCRCCacheDao) Lookup(ctx context.Context, location string, modTime int64) (uint32, bool, error) {
	db := dao.dbGetter()
	if db == nil {
		return 0, false, nil
	}

	const query = `SELECT crc, file_modtime FROM file_crc_cache_tab WHERE location = ? LIMIT 1`
	rows, err := db.QueryContext(ctx, query, location)
	if err != nil {
		return 0, false, fmt.Errorf("query crc cache: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var crc uint32
		var cachedModTime int64
		if err := rows.Scan(&crc, &cachedModTime); err != nil {
			return 0, false, fmt.Errorf("scan crc cache: %w", err)
		}
		if cachedModTime == modTime {
			return crc, true, nil
		}
		return 0, false, nil
	}
	if err := rows.Err(); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}

// Upsert stores or updates the cached checksum for the provided location.
func (dao *fileCRCCacheDao) Upsert(ctx context.Context, location string, modTime int64, crc uint32) error {
	db := dao.dbGetter()
	if db == nil {
		return fmt.Errorf("crc cache dao not initialised")
	}

	now := time.Now().Unix()
	payload := []map[string]interface{}{{
		"location":     location,
		"create_time":  now,
		"file_modtime": modTime,
		"crc":          crc,
	}}
	insertSQL, insertArgs, err := builder.BuildInsert(crcCacheTableName, payload)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		if !isUniqueConstraintError(err) {
			return fmt.Errorf("insert crc cache: %w", err)
		}
		updateSQL, updateArgs, err := builder.BuildUpdate(crcCacheTableName,
			map[string]interface{}{"location": location},
			map[string]interface{}{
				"file_modtime": modTime,
				"crc":          crc,
			},
		)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, updateSQL, updateArgs...); err != nil {
			return fmt.Errorf("update crc cache: %w", err)
		}
	}
	return nil
}

func (dao *fileCRCCacheDao) ListAll(ctx context.Context) ([]CRCCacheEntry, error) {
	db := dao.dbGetter()
	if db == nil {
		return nil, fmt.Errorf("crc cache dao not initialised")
	}
	const query = `SELECT location FROM file_crc_cache_tab`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list crc cache: %w", err)
	}
	defer rows.Close()

	var result []CRCCacheEntry
	for rows.Next() {
		var entry CRCCacheEntry
		if err := rows.Scan(&entry.Location); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (dao *fileCRCCacheDao) DeleteByLocations(ctx context.Context, locations []string) error {
	if len(locations) == 0 {
		return nil
	}
	db := dao.dbGetter()
	if db == nil {
		return fmt.Errorf("crc cache dao not initialised")
	}
	where := map[string]interface{}{"location in": locations}
	deleteSQL, args, err := builder.BuildDelete(crcCacheTableName, where)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, deleteSQL, args...)
	if err != nil {
		return fmt.Errorf("delete crc cache entries: %w", err)
	}
	return nil
}

// The sqlite driver does not expose a stable typed error for constraint
// violations, match on the message.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
