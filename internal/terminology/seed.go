package terminology

import "github.com/valpere/termitran/internal"

// seedTerms is the built-in terminology dictionary used when the remote
// knowledge base is unreachable or unconfigured. Load never fails: at
// worst it degrades to this set.
var seedTerms = []internal.Term{
	{Original: "激光雷达", Translation: "LiDAR"},
	{Original: "建图", Translation: "Mapping"},
	{Original: "定位", Translation: "Localization"},
	{Original: "重影", Translation: "Ghosting"},
	{Original: "虚影", Translation: "Phantom"},
	{Original: "定位得分", Translation: "Localization Score"},
	{Original: "扩建功能", Translation: "Expansion Function"},
	{Original: "点云数据", Translation: "Point Cloud Data"},
	{Original: "定位丢失", Translation: "Localization Loss"},
	{Original: "运行停止", Translation: "Operation Halt"},
	{Original: "乱走", Translation: "Erratic Movement"},
	{Original: "禁区", Translation: "Forbidden Zone"},
	{Original: "路径规划", Translation: "Path Planning"},
	{Original: "避障", Translation: "Obstacle Avoidance"},
	{Original: "导航", Translation: "Navigation"},
	{Original: "地图", Translation: "Map"},
	{Original: "机器人", Translation: "Robot"},
	{Original: "扫地机", Translation: "Cleaning Robot"},
	{Original: "充电桩", Translation: "Charging Dock"},
}

// SeedTerms returns a copy of the built-in seed dictionary.
func SeedTerms() []internal.Term {
	out := make([]internal.Term, len(seedTerms))
	copy(out, seedTerms)
	return out
}
