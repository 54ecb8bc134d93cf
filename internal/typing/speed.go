/**
 * Package typing 打字引擎
 *
 * 将文本转换为模拟键盘输入。提供限速、分块、可取消的打字工作器，
 * 所有键盘注入都发生在一个专用的 OS 线程上。
 */
package typing

import (
	"fmt"
	"time"
)

// Speed 打字速度档位
type Speed string

const (
	// SpeedSlow 慢速（每字符 50ms）
	SpeedSlow Speed = "slow"
	// SpeedNormal 正常速度（每字符 25ms）
	SpeedNormal Speed = "normal"
	// SpeedFast 快速（每字符 10ms）
	SpeedFast Speed = "fast"
)

// DefaultSpeed 默认打字速度
const DefaultSpeed = SpeedNormal

// Delay 返回该速度档位下每个字符之间的延迟
//
// 未知档位按默认速度处理。
//
// Returns: time.Duration - 字符间延迟
func (s Speed) Delay() time.Duration {
	switch s {
	case SpeedSlow:
		return 50 * time.Millisecond
	case SpeedFast:
		return 10 * time.Millisecond
	default:
		return 25 * time.Millisecond
	}
}

// Valid 判断速度档位是否有效
//
// Returns: bool - 是否为三个已知档位之一
func (s Speed) Valid() bool {
	switch s {
	case SpeedSlow, SpeedNormal, SpeedFast:
		return true
	default:
		return false
	}
}

// String 返回速度档位的字符串表示
func (s Speed) String() string {
	return string(s)
}

// ParseSpeed 解析速度档位字符串
//
// Parameters: value - 速度字符串（slow/normal/fast）
//
// Returns:
//   - Speed: 解析出的速度档位
//   - error: 字符串无效时返回错误
func ParseSpeed(value string) (Speed, error) {
	s := Speed(value)
	if !s.Valid() {
		return DefaultSpeed, fmt.Errorf("invalid typing speed: %q", value)
	}
	return s, nil
}

// UnmarshalYAML 实现 yaml.Unmarshaler 接口
//
// 无效值回退到默认速度，保证配置文件损坏时程序仍可启动。
func (s *Speed) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var value string
	if err := unmarshal(&value); err != nil {
		return err
	}

	parsed, err := ParseSpeed(value)
	if err != nil {
		*s = DefaultSpeed
		return nil
	}
	*s = parsed
	return nil
}

// MarshalYAML 实现 yaml.Marshaler 接口
func (s Speed) MarshalYAML() (interface{}, error) {
	return string(s), nil
}
