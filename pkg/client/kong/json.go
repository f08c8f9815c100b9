package kong

import (
	"net/url"

	"github.com/tidwall/gjson"
)

func getString(payload []byte, path string) string {
	return gjson.GetBytes(payload, path).String()
}

func getBool(payload []byte, path string) bool {
	return gjson.GetBytes(payload, path).Bool()
}

func getInt(payload []byte, path string) int64 {
	return gjson.GetBytes(payload, path).Int()
}

func escape(name string) string {
	return url.PathEscape(name)
}
