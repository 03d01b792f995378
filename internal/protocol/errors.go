package protocol

// 错误码
const (
	ErrCodeUnknown             = 1000
	ErrCodeInvalidMsg          = 1001
	ErrCodeRateLimit           = 1002 // 速率限制
	ErrCodeRoomNotFound        = 2001
	ErrCodeRoomFull            = 2002
	ErrCodeNotInRoom           = 2003
	ErrCodeGameStarted         = 2004 // 游戏已开始
	ErrCodeGameNotStart        = 3001
	ErrCodeInsufficientPlayers = 3002 // 人数不足无法开始
	ErrCodeNotHost             = 3003 // 仅房主可操作
	ErrCodeNoWords             = 3004 // 该分类下没有可用单词
	ErrCodeServerMaintenance   = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:             "未知错误",
	ErrCodeInvalidMsg:          "无效的消息格式",
	ErrCodeRateLimit:           "请求过于频繁",
	ErrCodeRoomNotFound:        "房间不存在",
	ErrCodeRoomFull:            "房间已满",
	ErrCodeNotInRoom:           "您不在房间中",
	ErrCodeGameStarted:         "游戏已开始",
	ErrCodeGameNotStart:        "游戏尚未开始",
	ErrCodeInsufficientPlayers: "玩家人数不足，无法开始",
	ErrCodeNotHost:             "只有房主才能进行此操作",
	ErrCodeNoWords:             "该分类下暂无单词",
	ErrCodeServerMaintenance:   "服务器维护中",
}
