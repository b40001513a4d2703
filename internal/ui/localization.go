package ui

import (
	"strings"

	"fyne.io/fyne/v2/lang"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyFileExistsTitle   = "file_exists_title"
	KeyFileExistsMessage = "file_exists_message"
	KeyBridgeListening   = "bridge_listening"
	KeyProxyListening    = "proxy_listening"
	KeyNotifications     = "notifications"
	KeyOpenUI            = "open_ui"
	KeyHide              = "hide"
	KeyQuit              = "quit"
	KeySettings          = "settings"
	KeyLanguage          = "language"
	KeyLogLevel          = "log_level"
	KeyDownloadDirectory = "download_directory"
	KeyBrowse            = "browse"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeySettingsSaved     = "settings_saved"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(language string) {
	if language == "system" {
		language = systemLanguage()
	}

	if _, exists := l.texts[language]; exists {
		l.currentLanguage = language
	}
}

// systemLanguage maps the OS locale to a supported language, English by default
func systemLanguage() string {
	if strings.HasPrefix(strings.ToLower(lang.SystemLocale().LanguageString()), "zh") {
		return "zh"
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"zh": "简体中文",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Ren Flow",
		KeyFileExistsTitle:   "File exists",
		KeyFileExistsMessage: "The file already exists. Overwrite it?",
		KeyBridgeListening:   "Command bridge",
		KeyProxyListening:    "Local proxy port",
		KeyNotifications:     "Notifications",
		KeyOpenUI:            "Open UI",
		KeyHide:              "Hide",
		KeyQuit:              "Quit",
		KeySettings:          "Settings",
		KeyLanguage:          "Language",
		KeyLogLevel:          "Log level",
		KeyDownloadDirectory: "Download folder",
		KeyBrowse:            "Browse",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeySettingsSaved:     "Settings saved. Language changes apply after restart.",
	}

	l.texts["zh"] = map[string]string{
		KeyAppTitle:          "Ren Flow",
		KeyFileExistsTitle:   "文件已存在",
		KeyFileExistsMessage: "文件已存在，是否覆盖？",
		KeyBridgeListening:   "命令桥",
		KeyProxyListening:    "本地代理端口",
		KeyNotifications:     "通知",
		KeyOpenUI:            "打开界面",
		KeyHide:              "隐藏",
		KeyQuit:              "退出",
		KeySettings:          "设置",
		KeyLanguage:          "语言",
		KeyLogLevel:          "日志级别",
		KeyDownloadDirectory: "下载目录",
		KeyBrowse:            "浏览",
		KeySave:              "保存",
		KeyCancel:            "取消",
		KeySettingsSaved:     "设置已保存，语言将在重启后生效。",
	}
}
