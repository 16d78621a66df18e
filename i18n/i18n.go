// Package i18n holds the operator-facing message catalog. A Catalog is bound
// to a single locale at construction and passed explicitly to the components
// that render text; there is no process-wide language switch.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Message keys.
const (
	StartInstruction = "start_instruction"
	LLMResponse      = "llm_response"
	StartExecute     = "start_execute"
	ExecuteResult    = "execute_result"
	StartFeedback    = "start_feedback"
	EndInstruction   = "end_instruction"
	NoContext        = "no_context"
	UnknownFormat    = "unknown_format"
	PublishDisabled  = "publish_disabled"
	UploadSuccess    = "upload_success"
	UploadFailed     = "upload_failed"
	UploadError      = "upload_error"
	SaveFailed       = "save_failed"
	ResetWarning     = "reset_warning"
	ResetConfirm     = "reset_confirm"
	EnvDescription   = "env_description"
	Description      = "description"
	RoundLimit       = "round_limit"
)

var supported = []language.Tag{language.English, language.Chinese}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		StartInstruction: "Start processing instruction",
		LLMResponse:      "LLM response",
		StartExecute:     "Start executing code block",
		ExecuteResult:    "Execution result",
		StartFeedback:    "Start sending feedback",
		EndInstruction:   "End processing instruction",
		NoContext:        "No context information found",
		UnknownFormat:    "Unknown format",
		PublishDisabled:  "Publishing is disabled",
		UploadSuccess:    "Article uploaded successfully",
		UploadFailed:     "Upload failed (status code: %d)",
		UploadError:      "Upload error",
		SaveFailed:       "Save failed",
		ResetWarning:     "Severe warning: this will reinitialize all data!",
		ResetConfirm:     "If you are sure you want to continue, enter 'y'",
		EnvDescription:   "Environment variable name and meaning",
		Description:      "description",
		RoundLimit:       "Stopped after reaching the maximum number of feedback rounds (%d)",
	},
	language.Chinese: {
		StartInstruction: "开始处理指令",
		LLMResponse:      "LLM 回复",
		StartExecute:     "开始执行代码块",
		ExecuteResult:    "执行结果",
		StartFeedback:    "开始反馈结果",
		EndInstruction:   "结束处理指令",
		NoContext:        "未找到上下文信息",
		UnknownFormat:    "不支持的格式",
		PublishDisabled:  "发布功能已禁用",
		UploadSuccess:    "文章上传成功",
		UploadFailed:     "上传失败 (状态码: %d)",
		UploadError:      "上传出错",
		SaveFailed:       "保存失败",
		ResetWarning:     "严重警告：这将重新初始化所有数据！",
		ResetConfirm:     "如果你确定要继续，请输入 'y'",
		EnvDescription:   "环境变量名称和意义",
		Description:      "描述",
		RoundLimit:       "已达到最大反馈轮数 (%d)，停止处理",
	},
}

// Catalog resolves message keys for one locale.
type Catalog struct {
	tag language.Tag
}

// New returns a Catalog for the given BCP 47 locale tag (e.g. "en", "zh-CN").
// Empty or unparseable tags, and locales without a catalog, fall back to English.
func New(lang string) *Catalog {
	if lang == "" {
		return &Catalog{tag: language.English}
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return &Catalog{tag: language.English}
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return &Catalog{tag: language.English}
	}
	return &Catalog{tag: supported[idx]}
}

// Tag returns the resolved locale.
func (c *Catalog) Tag() language.Tag { return c.tag }

// T returns the message for key, formatted with args when given. Missing keys
// fall back to English and then to the key itself.
func (c *Catalog) T(key string, args ...any) string {
	msg, ok := catalogs[c.tag][key]
	if !ok {
		msg, ok = catalogs[language.English][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
