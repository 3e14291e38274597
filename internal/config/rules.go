package config

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RecoveryAshes/bookmarkscope/internal/classify"
	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

const (
	// DefaultRulesFile 默认规则文件路径
	DefaultRulesFile = "configs/rules.yaml"

	// MaxConfigFileSize 配置文件最大大小 (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

// RulesLoader 分类规则文件加载器
// 负责加载、验证和编译规则文件
type RulesLoader struct {
	configPath string
}

// NewRulesLoader 创建规则加载器
func NewRulesLoader(configPath string) *RulesLoader {
	if configPath == "" {
		configPath = DefaultRulesFile
	}
	return &RulesLoader{configPath: configPath}
}

// Path 规则文件路径
func (rl *RulesLoader) Path() string {
	return rl.configPath
}

// EnsureConfigExists 规则文件不存在时写入内置规则
func (rl *RulesLoader) EnsureConfigExists() error {
	if _, err := os.Stat(rl.configPath); os.IsNotExist(err) {
		if err := WriteRuleFile(rl.configPath, classify.DefaultRuleSpecs()); err != nil {
			return fmt.Errorf("无法生成规则文件 [%s]: %w", rl.configPath, err)
		}
		utils.Infof("已生成默认规则文件: %s", rl.configPath)
	}
	return nil
}

// ValidateFileSize 验证规则文件大小是否在限制内
func (rl *RulesLoader) ValidateFileSize() error {
	info, err := os.Stat(rl.configPath)
	if err != nil {
		return fmt.Errorf("无法读取规则文件信息 [%s]: %w", rl.configPath, err)
	}

	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: rl.configPath,
			Cause: fmt.Errorf("规则文件过大: %d 字节 (最大 %d 字节)",
				info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// LoadSpecs 读取规则文件
// 执行流程:
//  1. 验证文件大小
//  2. 使用Viper解析YAML
//  3. 绑定到RuleFile结构体
func (rl *RulesLoader) LoadSpecs() ([]models.RuleSpec, error) {
	if err := rl.ValidateFileSize(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(rl.configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// 文件被其他进程锁定时退回内置规则
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			utils.Warnf("规则文件被锁定 [%s], 使用内置规则", rl.configPath)
			return classify.DefaultRuleSpecs(), nil
		}
		return nil, &models.ConfigError{FilePath: rl.configPath, Cause: err}
	}

	var file models.RuleFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, &models.ConfigError{
			FilePath: rl.configPath,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}
	return file.Rules, nil
}

// LoadRules 读取并编译规则
func (rl *RulesLoader) LoadRules() ([]classify.Rule, error) {
	specs, err := rl.LoadSpecs()
	if err != nil {
		return nil, err
	}

	rules, err := classify.CompileRules(specs)
	if err != nil {
		return nil, &models.ConfigError{FilePath: rl.configPath, Cause: err}
	}

	utils.Debugf("已加载 %d 条分类规则: %s", len(rules), rl.configPath)
	return rules, nil
}

// MarshalRules 把规则序列化为YAML
func MarshalRules(specs []models.RuleSpec) ([]byte, error) {
	return yaml.Marshal(models.RuleFile{Rules: specs})
}

// WriteRuleFile 把规则写入YAML文件
func WriteRuleFile(path string, specs []models.RuleSpec) error {
	data, err := MarshalRules(specs)
	if err != nil {
		return fmt.Errorf("序列化规则失败: %w", err)
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
