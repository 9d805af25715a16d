package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	NotePath       string        `mapstructure:"path"`
	Editable       bool          `mapstructure:"editable"`
	Grammar        string        `mapstructure:"grammar"`
	PreserveMeta   bool          `mapstructure:"preserve_meta"`
	HighlightStyle string        `mapstructure:"highlight_style"`
	MarkdownStyle  string        `mapstructure:"markdown_style"`
	Autosave       bool          `mapstructure:"autosave"`
	AutosaveDelay  time.Duration `mapstructure:"autosave_delay"`
	Watch          bool          `mapstructure:"watch"`
	Output         string        `mapstructure:"output"`
	Editor         string        `mapstructure:"editor"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFile        string        `mapstructure:"log_file"`
	ColorHeader    string        `mapstructure:"color_header"`
	ColorText      string        `mapstructure:"color_text"`
	ColorCode      string        `mapstructure:"color_code"`
	ColorPath      string        `mapstructure:"color_path"`
	ColorBorder    string        `mapstructure:"color_border"`
	ColorCursor    string        `mapstructure:"color_cursor"`
	ColorSelected  string        `mapstructure:"color_selected"`
	ColorDim       string        `mapstructure:"color_dim"`
	ColorCorrect   string        `mapstructure:"color_correct"`
	ColorWrong     string        `mapstructure:"color_wrong"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	SetDefaults()

	viper.SetConfigName("quizmd")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "quizmd"))
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("QUIZMD")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// SetDefaults registers every key's default value
func SetDefaults() {
	viper.SetDefault("path", "")
	viper.SetDefault("editable", true)
	viper.SetDefault("grammar", "viewer")
	viper.SetDefault("preserve_meta", false)
	viper.SetDefault("highlight_style", "dracula")
	viper.SetDefault("markdown_style", "dark")
	viper.SetDefault("autosave", true)
	viper.SetDefault("autosave_delay", 800*time.Millisecond)
	viper.SetDefault("watch", true)
	viper.SetDefault("output", "print")
	viper.SetDefault("editor", os.Getenv("EDITOR"))
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", defaultLogFile())
	viper.SetDefault("color_header", "36")  // Cyan
	viper.SetDefault("color_text", "")      // Terminal default
	viper.SetDefault("color_code", "32")    // Green
	viper.SetDefault("color_path", "90")    // Gray
	viper.SetDefault("color_border", "240") // Dark gray
	viper.SetDefault("color_cursor", "212") // Pink
	viper.SetDefault("color_selected", "236")
	viper.SetDefault("color_dim", "241")
	viper.SetDefault("color_correct", "42") // Green
	viper.SetDefault("color_wrong", "196")  // Red
}

func defaultLogFile() string {
	return filepath.Join(xdg.StateHome, "quizmd", "quizmd.log")
}

// ConfigFile returns the config file in use, empty if none was found
func ConfigFile() string {
	return viper.ConfigFileUsed()
}

// GetPath returns the note path with tilde expansion
func GetPath() string {
	path := viper.GetString("path")
	return expandTilde(path)
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetEditable returns whether the current user may edit notes
func GetEditable() bool {
	return viper.GetBool("editable")
}

// GetGrammar returns the flashcard grammar name
func GetGrammar() string {
	return viper.GetString("grammar")
}

// GetPreserveMeta returns whether the quiz toggle keeps other meta tokens
func GetPreserveMeta() bool {
	return viper.GetBool("preserve_meta")
}

// GetHighlightStyle returns the chroma style name
func GetHighlightStyle() string {
	return viper.GetString("highlight_style")
}

// GetMarkdownStyle returns the glamour style name
func GetMarkdownStyle() string {
	return viper.GetString("markdown_style")
}

// GetAutosave returns whether edits are saved automatically
func GetAutosave() bool {
	return viper.GetBool("autosave")
}

// GetAutosaveDelay returns the autosave debounce interval
func GetAutosaveDelay() time.Duration {
	d := viper.GetDuration("autosave_delay")
	if d <= 0 {
		return 800 * time.Millisecond
	}
	return d
}

// GetWatch returns whether external changes reload the note
func GetWatch() bool {
	return viper.GetBool("watch")
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetEditor returns the external editor command, empty for the system default
func GetEditor() string {
	return viper.GetString("editor")
}

// GetLogLevel returns the log level name
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GetLogFile returns the TUI log file with tilde expansion
func GetLogFile() string {
	return expandTilde(viper.GetString("log_file"))
}

// GetColorHeader returns ANSI color code for headers
func GetColorHeader() string {
	return viper.GetString("color_header")
}

// GetColorText returns ANSI color code for prose
func GetColorText() string {
	return viper.GetString("color_text")
}

// GetColorCode returns ANSI color code for code listings
func GetColorCode() string {
	return viper.GetString("color_code")
}

// GetColorPath returns ANSI color code for file paths
func GetColorPath() string {
	return viper.GetString("color_path")
}

// GetColorBorder returns the border color
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// GetColorCursor returns the cursor color
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorSelected returns the selection background
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColorDim returns the dimmed text color
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorCorrect returns the border color of a correct answer
func GetColorCorrect() string {
	return viper.GetString("color_correct")
}

// GetColorWrong returns the border color of a wrong answer
func GetColorWrong() string {
	return viper.GetString("color_wrong")
}

// SetEditable sets the edit capability at runtime
func SetEditable(editable bool) {
	viper.Set("editable", editable)
	C.Editable = editable
}

// SetGrammar sets the flashcard grammar at runtime
func SetGrammar(name string) {
	viper.Set("grammar", name)
	C.Grammar = name
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetPath sets path at runtime
func SetPath(path string) {
	viper.Set("path", path)
	C.NotePath = path
}

// SetLogLevel sets the log level at runtime
func SetLogLevel(level string) {
	viper.Set("log_level", level)
	C.LogLevel = level
}
