// Package utils converts zero values to SQL NULLs for optional columns.
//
//	utils.ToNullString("")         // NULL
//	utils.ToNullTime(time.Time{})  // NULL
//	utils.ToNullInt64(0)           // NULL
package utils
