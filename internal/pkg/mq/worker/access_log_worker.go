package worker

import (
	"encoding/json"
	"log"

	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/mq"
	"github.com/portal-unk/portal-api/internal/repositories"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ShareAccessQueueName 分享访问事件队列
const ShareAccessQueueName = "share_access_queue"

// AccessLogWorker 消费分享访问事件并写入审计表
// 访问计数本身由数据库的原子 UPDATE 保证，这里只负责审计流水
type AccessLogWorker struct {
	mqClient      *mq.RabbitMQClient
	accessLogRepo repositories.AccessLogRepository
}

func NewAccessLogWorker(mqClient *mq.RabbitMQClient, accessLogRepo repositories.AccessLogRepository) *AccessLogWorker {
	return &AccessLogWorker{
		mqClient:      mqClient,
		accessLogRepo: accessLogRepo,
	}
}

func (w *AccessLogWorker) Start() {
	_, err := w.mqClient.DeclareQueue(ShareAccessQueueName)
	if err != nil {
		log.Fatalf("Failed to declare queue: %s", err)
	}
	err = w.mqClient.Consume(ShareAccessQueueName, w.handleAccessEvent)
	if err != nil {
		log.Fatalf("Failed to start consuming from queue: %s", err)
	}

	log.Println("Access log worker started...")
}

func (w *AccessLogWorker) handleAccessEvent(msg amqp.Delivery) {
	var event models.ShareAccessEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Error("Failed to unmarshal share access event", zap.Error(err))
		_ = msg.Nack(false, false) // 解析失败,直接抛弃
		return
	}

	entry := &models.ShareAccessLog{
		ShareLinkID: event.ShareLinkID,
		DJID:        event.DJID,
		ProducerID:  event.ProducerID,
		ClientIP:    event.ClientIP,
		AccessedAt:  event.AccessedAt,
	}
	if err := w.accessLogRepo.Create(entry); err != nil {
		logger.Error("写入分享访问审计记录失败",
			zap.Uint64("shareLinkID", event.ShareLinkID), zap.Error(err))
		_ = msg.Nack(false, true) // 数据库错误,重新入队等待重试
		return
	}

	_ = msg.Ack(false)
}
