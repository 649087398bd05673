// Package xconf 提供套件的配置装载：从 YAML/JSON 文件或字节数据解析出
// 强类型的 [Settings]，并转换为各组件的选项。
//
// # 功能概述
//
//   - 格式检测：按扩展名识别 .yaml/.yml/.json，字节数据需显式指定格式
//   - 强类型：缺省值在 [DefaultSettings] 中集中声明，装载后经 Validate 校验
//   - 选项转换：Settings 直接产出 xcache / xdlock / xseqid / xseckill 的选项
//
// # 使用示例
//
//	settings, err := xconf.Load("flashkit.yaml")
//	if err != nil {
//	    return err
//	}
//	client := xconf.NewRedisClient(settings.Redis)
//	cache, err := xcache.New(client, settings.CacheOptions()...)
package xconf
