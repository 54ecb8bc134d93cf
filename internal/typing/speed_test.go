package typing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestSpeedDelay 测试速度档位对应的字符延迟
//
// 验证三个档位的延迟值以及未知档位的回退行为。
func TestSpeedDelay(t *testing.T) {
	tests := []struct {
		name     string
		speed    Speed
		expected time.Duration
	}{
		{"慢速", SpeedSlow, 50 * time.Millisecond},
		{"正常", SpeedNormal, 25 * time.Millisecond},
		{"快速", SpeedFast, 10 * time.Millisecond},
		{"未知档位按默认处理", Speed("turbo"), 25 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.speed.Delay())
		})
	}
}

// TestParseSpeed 测试速度档位解析
//
// 测试场景：
// 1. 三个有效档位
// 2. 无效字符串返回错误和默认值
func TestParseSpeed(t *testing.T) {
	for _, valid := range []string{"slow", "normal", "fast"} {
		s, err := ParseSpeed(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, s.String())
		assert.True(t, s.Valid())
	}

	s, err := ParseSpeed("warp")
	assert.Error(t, err)
	assert.Equal(t, DefaultSpeed, s)

	s, err = ParseSpeed("")
	assert.Error(t, err)
	assert.Equal(t, DefaultSpeed, s)
}

// TestSpeedYAML 测试速度档位的 YAML 序列化
//
// 验证配置文件中的速度字段能够正确读写，
// 无效值回退到默认速度而不是报错。
func TestSpeedYAML(t *testing.T) {
	t.Run("序列化", func(t *testing.T) {
		out, err := yaml.Marshal(SpeedFast)
		require.NoError(t, err)
		assert.Equal(t, "fast\n", string(out))
	})

	t.Run("反序列化", func(t *testing.T) {
		var s Speed
		require.NoError(t, yaml.Unmarshal([]byte("slow"), &s))
		assert.Equal(t, SpeedSlow, s)
	})

	t.Run("无效值回退到默认", func(t *testing.T) {
		var s Speed
		require.NoError(t, yaml.Unmarshal([]byte("hyperspeed"), &s))
		assert.Equal(t, DefaultSpeed, s)
	})
}
