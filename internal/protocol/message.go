package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoinRoom  MessageType = "join_room"  // 加入房间（不带房间号则创建新房间）
	MsgLeaveRoom MessageType = "leave_room" // 离开房间

	// 游戏操作
	MsgStartGame    MessageType = "start_game"    // 房主开始游戏
	MsgUpdateConfig MessageType = "update_config" // 房主修改房间配置
	MsgSpinWheel    MessageType = "spin_wheel"    // 转动分类转盘
	MsgStartTurn    MessageType = "start_turn"    // 开始本回合答题
	MsgAnswer       MessageType = "answer"        // 提交答案

	// 大厅 / 排行榜
	MsgGetRoomList    MessageType = "get_room_list"    // 获取房间列表
	MsgGetOnlineCount MessageType = "get_online_count" // 获取在线人数
	MsgGetStats       MessageType = "get_stats"        // 获取个人统计
	MsgGetLeaderboard MessageType = "get_leaderboard"  // 获取排行榜
	MsgChat           MessageType = "chat"             // 聊天消息
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected   MessageType = "connected"    // 连接成功
	MsgPong        MessageType = "pong"         // 心跳 pong
	MsgOnlineCount MessageType = "online_count" // 在线人数更新

	// 房间相关
	MsgRoomCreated  MessageType = "room_created"  // 房间创建成功
	MsgRoomJoined   MessageType = "room_joined"   // 加入房间成功
	MsgPlayerJoined MessageType = "player_joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player_left"   // 玩家离开

	// 游戏流程
	MsgGameState    MessageType = "game_state"    // 全量游戏状态快照
	MsgWheelSpun    MessageType = "wheel_spun"    // 转盘结果（分类已选定）
	MsgAnswerResult MessageType = "answer_result" // 答题判定结果
	MsgGameOver     MessageType = "game_over"     // 游戏结束

	// 大厅 / 排行榜
	MsgRoomListResult    MessageType = "room_list_result"    // 房间列表结果
	MsgStatsResult       MessageType = "stats_result"        // 个人统计结果
	MsgLeaderboardResult MessageType = "leaderboard_result"  // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
