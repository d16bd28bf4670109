package validator_test

import (
	"testing"

	"github.com/valpere/termitran/internal/validator"
)

const englishSample = "The lidar sensor continuously scans the environment to build a map and localize the robot within it."

const chineseSample = "激光雷达传感器持续扫描环境，用于构建地图并在其中对机器人进行定位，这是导航系统的基础能力。"

func TestMatches_EnglishText(t *testing.T) {
	v := validator.New()

	if !v.Matches(englishSample, "EN") {
		t.Error("English text should match EN")
	}
	if !v.Matches(englishSample, "en-US") {
		t.Error("regional codes should match by ISO prefix")
	}
	if v.Matches(englishSample, "ZH") {
		t.Error("English text should not match ZH")
	}
}

func TestMatches_ChineseText(t *testing.T) {
	v := validator.New()

	if !v.Matches(chineseSample, "ZH") {
		t.Error("Chinese text should match ZH")
	}
	if v.Matches(chineseSample, "EN") {
		t.Error("Chinese text should not match EN")
	}
}

func TestMatches_ShortTextSkipped(t *testing.T) {
	v := validator.New()

	// Too little signal for detection; never reported as a mismatch.
	if !v.Matches("short", "ZH") {
		t.Error("short text should always match")
	}
	if !v.Matches("", "EN") {
		t.Error("empty text should always match")
	}
}

func TestMatches_NonISOAliases(t *testing.T) {
	v := validator.New()

	japanese := "ロボットはレーザーセンサーを使って周囲の環境を継続的にスキャンし、地図を作成しながら自己位置を推定します。"
	if !v.Matches(japanese, "JP") {
		t.Error("JP alias should resolve to JA")
	}
	if !v.Matches(japanese, "JA") {
		t.Error("JA should match Japanese text")
	}

	korean := "로봇은 레이저 센서를 사용하여 주변 환경을 지속적으로 스캔하고 지도를 만들면서 자신의 위치를 추정합니다."
	if !v.Matches(korean, "KR") {
		t.Error("KR alias should resolve to KO")
	}
}

func TestDetectISO(t *testing.T) {
	v := validator.New()

	code, ok := v.DetectISO(englishSample)
	if !ok {
		t.Fatal("detection should succeed on a full sentence")
	}
	if code != "EN" {
		t.Errorf("got %q, want EN", code)
	}

	if _, ok := v.DetectISO(""); ok {
		t.Error("empty text should not detect")
	}
}
