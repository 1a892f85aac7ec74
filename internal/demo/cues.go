package demo

import "math"

// 长辈形象的显示阈值
const (
	glowThreshold      = 0.3
	dotColourThreshold = 0.5
	badgeThreshold     = 0.6
	pulseThreshold     = 0.7
)

// 节律条宽度（像素）
const (
	rhythmBarActive = 80
	rhythmBarIdle   = 30
)

// Cues 渲染层需要的动画目标，全部由快照推导
type Cues struct {
	ConnectionLine   bool    `json:"connection_line"`
	ParticleFlow     bool    `json:"particle_flow"`
	ElderGlow        bool    `json:"elder_glow"`
	GlowOpacity      float64 `json:"glow_opacity"`
	DeviceDotShift   bool    `json:"device_dot_shift"`
	ResonanceBadge   bool    `json:"resonance_badge"`
	ButtonPulse      bool    `json:"button_pulse"`
	FamilyRhythmBar  int     `json:"family_rhythm_bar"`
	ElderRhythmBar   int     `json:"elder_rhythm_bar"`
	ConnectionButton string  `json:"connection_button"`
}

// CuesFor 根据快照计算动画目标
func CuesFor(s Snapshot) Cues {
	c := Cues{
		ConnectionLine:   s.Connected,
		ParticleFlow:     s.Connected && s.FamilyChewing,
		ElderGlow:        s.Connected && s.ResonanceStrength > glowThreshold,
		DeviceDotShift:   s.ResonanceStrength > dotColourThreshold,
		ResonanceBadge:   s.Connected && s.ResonanceStrength > badgeThreshold,
		ButtonPulse:      s.ResonanceStrength > pulseThreshold && s.ElderChewing,
		FamilyRhythmBar:  rhythmBarIdle,
		ElderRhythmBar:   rhythmBarIdle,
		ConnectionButton: "Connect Devices",
	}
	if c.ElderGlow {
		// 强度以十分之一为单位，透明度取到百分位
		c.GlowOpacity = math.Round(s.ResonanceStrength*20) / 100
	}
	if s.FamilyChewing {
		c.FamilyRhythmBar = rhythmBarActive
	}
	if s.ElderChewing {
		c.ElderRhythmBar = rhythmBarActive
	}
	if s.Connected {
		c.ConnectionButton = "Disconnect Devices"
	}
	return c
}
