package ws

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// BuildMessage 构建统一格式的消息（type + data）
func BuildMessage(msgType string, data map[string]interface{}) []byte {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["type"] = msgType
	msg, _ := json.Marshal(data)
	return msg
}

// ErrorMessage 只发给调用方的错误帧
func ErrorMessage(msgType, message string) []byte {
	return BuildMessage(msgType, map[string]interface{}{"message": message})
}

// Envelope 入站帧：{"type": "...", "data": {...}}
type Envelope struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	return env, err
}

// 自定义 HookFunc，把字符串转换成 int
func stringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from == reflect.String && to == reflect.Int {
			return strconv.Atoi(data.(string))
		}
		return data, nil
	}
}

// DecodePayload 把入站 data 解析到请求结构体（json tag）
func DecodePayload(data map[string]interface{}, out interface{}) error {
	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: stringToIntHookFunc(),
		Result:     out,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}
